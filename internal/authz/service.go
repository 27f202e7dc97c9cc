package authz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiV1Prefix     = "/api/v1"
	casbinTableName = "casbin_rule"
	adminSubjectFmt = "admin:%d"
	rolePrefix      = "role:"

	// 锚点角色仅用于让"空角色"在 g 规则里有落点，不参与判定
	roleAnchor = "role:__anchor__"
)

// 后台按 HTTP 资源授权：obj 是去掉 /api/v1 前缀的路由模板
// （如 /admin/orders/:id/dispatch），act 是大写方法名，* 放行全部方法。
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// Policy 一条授权策略（主体 / 资源 / 动作）
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// Service 后台管理员 RBAC 服务。
// 商品、订单、发货、设置等后台资源的访问都经由这里判定；
// 策略经 gorm-adapter 落库，autosave 开启后变更即时持久化。
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 构建 RBAC 服务并加载已有策略
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}

	return &Service{enforcer: enforcer}, nil
}

func (s *Service) requireEnforcer() (*casbin.SyncedEnforcer, error) {
	if s == nil || s.enforcer == nil {
		return nil, fmt.Errorf("authz service unavailable")
	}
	return s.enforcer, nil
}

// Enforcer 返回底层 enforcer（角色初始化模块复用）
func (s *Service) Enforcer() *casbin.SyncedEnforcer {
	if s == nil {
		return nil
	}
	return s.enforcer
}

// Enforce 判定主体能否以 act 访问 obj
func (s *Service) Enforce(sub, obj, act string) (bool, error) {
	enforcer, err := s.requireEnforcer()
	if err != nil {
		return false, err
	}
	return enforcer.Enforce(strings.TrimSpace(sub), NormalizeObject(obj), NormalizeAction(act))
}

// EnforceAdmin 按管理员 ID 判定后台资源访问
func (s *Service) EnforceAdmin(adminID uint, obj, act string) (bool, error) {
	return s.Enforce(SubjectForAdmin(adminID), obj, act)
}

// ReloadPolicy 从存储重载全部策略
func (s *Service) ReloadPolicy() error {
	enforcer, err := s.requireEnforcer()
	if err != nil {
		return err
	}
	return enforcer.LoadPolicy()
}

// EnsureRole 归一化角色名并保证其存在，返回归一化后的名称
func (s *Service) EnsureRole(role string) (string, error) {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if normalized == roleAnchor {
		return "", fmt.Errorf("reserved role is not allowed")
	}
	enforcer, err := s.requireEnforcer()
	if err != nil {
		return "", err
	}

	exists, err := enforcer.HasNamedGroupingPolicy("g", normalized, roleAnchor)
	if err != nil {
		return "", fmt.Errorf("check role failed: %w", err)
	}
	if !exists {
		if _, err := enforcer.AddNamedGroupingPolicy("g", normalized, roleAnchor); err != nil {
			return "", fmt.Errorf("create role failed: %w", err)
		}
	}
	return normalized, nil
}

// ListRoles 列出全部已定义角色（按名称排序）
func (s *Service) ListRoles() ([]string, error) {
	enforcer, err := s.requireEnforcer()
	if err != nil {
		return nil, err
	}
	rules, err := enforcer.GetFilteredNamedGroupingPolicy("g", 0)
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}

	seen := make(map[string]struct{})
	for _, rule := range rules {
		for _, field := range rule {
			if strings.HasPrefix(field, rolePrefix) && field != roleAnchor {
				seen[field] = struct{}{}
			}
		}
	}
	roles := make([]string, 0, len(seen))
	for role := range seen {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles, nil
}

// DeleteRole 删除角色本身、其策略以及所有进出关联
func (s *Service) DeleteRole(role string) error {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	if normalized == roleAnchor {
		return fmt.Errorf("reserved role is not allowed")
	}
	enforcer, err := s.requireEnforcer()
	if err != nil {
		return err
	}

	if _, err := enforcer.RemoveFilteredPolicy(0, normalized); err != nil {
		return fmt.Errorf("remove role policy failed: %w", err)
	}
	if _, err := enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, normalized); err != nil {
		return fmt.Errorf("remove role link failed: %w", err)
	}
	if _, err := enforcer.RemoveFilteredNamedGroupingPolicy("g", 1, normalized); err != nil {
		return fmt.Errorf("remove role incoming link failed: %w", err)
	}
	return nil
}

// GrantRolePolicy 为角色授予一条资源策略（角色不存在时自动创建）
func (s *Service) GrantRolePolicy(role, object, action string) error {
	normalizedRole, err := s.EnsureRole(role)
	if err != nil {
		return err
	}
	normalizedAction := NormalizeAction(action)
	if normalizedAction == "" {
		return fmt.Errorf("action is required")
	}
	enforcer, err := s.requireEnforcer()
	if err != nil {
		return err
	}

	if _, err := enforcer.AddPolicy(normalizedRole, NormalizeObject(object), normalizedAction); err != nil {
		return fmt.Errorf("grant policy failed: %w", err)
	}
	return nil
}

// RevokeRolePolicy 撤销角色的一条资源策略
func (s *Service) RevokeRolePolicy(role, object, action string) error {
	normalizedRole, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	normalizedAction := NormalizeAction(action)
	if normalizedAction == "" {
		return fmt.Errorf("action is required")
	}
	enforcer, err := s.requireEnforcer()
	if err != nil {
		return err
	}

	if _, err := enforcer.RemovePolicy(normalizedRole, NormalizeObject(object), normalizedAction); err != nil {
		return fmt.Errorf("revoke policy failed: %w", err)
	}
	return nil
}

// GetRolePolicies 查询角色的全部策略
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	normalizedRole, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	enforcer, err := s.requireEnforcer()
	if err != nil {
		return nil, err
	}

	rules, err := enforcer.GetFilteredPolicy(0, normalizedRole)
	if err != nil {
		return nil, fmt.Errorf("get role policies failed: %w", err)
	}
	return policiesFromRules(rules), nil
}

// SetAdminRoles 覆盖式设置管理员的角色集合
func (s *Service) SetAdminRoles(adminID uint, roles []string) error {
	if adminID == 0 {
		return fmt.Errorf("admin id is required")
	}
	enforcer, err := s.requireEnforcer()
	if err != nil {
		return err
	}
	subject := SubjectForAdmin(adminID)

	if _, err := enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, subject); err != nil {
		return fmt.Errorf("clear admin roles failed: %w", err)
	}
	for _, role := range roles {
		normalizedRole, err := s.EnsureRole(role)
		if err != nil {
			return err
		}
		if _, err := enforcer.AddNamedGroupingPolicy("g", subject, normalizedRole); err != nil {
			return fmt.Errorf("assign admin role failed: %w", err)
		}
	}
	return nil
}

// GetAdminRoles 查询管理员当前绑定的角色
func (s *Service) GetAdminRoles(adminID uint) ([]string, error) {
	if adminID == 0 {
		return nil, fmt.Errorf("admin id is required")
	}
	enforcer, err := s.requireEnforcer()
	if err != nil {
		return nil, err
	}
	bound, err := enforcer.GetRolesForUser(SubjectForAdmin(adminID))
	if err != nil {
		return nil, fmt.Errorf("get admin roles failed: %w", err)
	}

	roles := make([]string, 0, len(bound))
	for _, role := range bound {
		if strings.HasPrefix(role, rolePrefix) && role != roleAnchor {
			roles = append(roles, role)
		}
	}
	sort.Strings(roles)
	return roles, nil
}

// GetAdminPolicies 查询管理员的全部生效策略（直连策略 + 角色继承，去重）
func (s *Service) GetAdminPolicies(adminID uint) ([]Policy, error) {
	if adminID == 0 {
		return nil, fmt.Errorf("admin id is required")
	}
	enforcer, err := s.requireEnforcer()
	if err != nil {
		return nil, err
	}
	subject := SubjectForAdmin(adminID)

	merged := map[string]Policy{}
	collect := func(rules [][]string) {
		for _, policy := range policiesFromRules(rules) {
			merged[policy.Subject+"|"+policy.Object+"|"+policy.Action] = policy
		}
	}

	direct, err := enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("get direct policies failed: %w", err)
	}
	collect(direct)

	roles, err := s.GetAdminRoles(adminID)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		rules, err := enforcer.GetFilteredPolicy(0, role)
		if err != nil {
			return nil, fmt.Errorf("get role policies failed: %w", err)
		}
		collect(rules)
	}

	result := make([]Policy, 0, len(merged))
	for _, policy := range merged {
		result = append(result, policy)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Subject != result[j].Subject {
			return result[i].Subject < result[j].Subject
		}
		if result[i].Object != result[j].Object {
			return result[i].Object < result[j].Object
		}
		return result[i].Action < result[j].Action
	})
	return result, nil
}

func policiesFromRules(rules [][]string) []Policy {
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: strings.TrimSpace(rule[0]),
			Object:  NormalizeObject(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	return policies
}

// SubjectForAdmin 管理员主体标识（admin:<id>）
func SubjectForAdmin(adminID uint) string {
	return fmt.Sprintf(adminSubjectFmt, adminID)
}

// NormalizeRole 归一化角色名：去空白、空格转下划线、补 role: 前缀
func NormalizeRole(role string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(role), " ", "_")
	if normalized == "" {
		return "", fmt.Errorf("role is required")
	}
	if !strings.HasPrefix(normalized, rolePrefix) {
		normalized = rolePrefix + normalized
	}
	if len(normalized) <= len(rolePrefix) {
		return "", fmt.Errorf("role is required")
	}
	return normalized, nil
}

// NormalizeObject 归一化资源路径：补前导斜杠并剥掉 /api/v1 前缀，
// 使策略表里存的始终是路由模板本身。
func NormalizeObject(object string) string {
	normalized := strings.TrimSpace(object)
	if normalized == "" {
		return "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if normalized == apiV1Prefix {
		return "/"
	}
	if strings.HasPrefix(normalized, apiV1Prefix+"/") {
		return strings.TrimPrefix(normalized, apiV1Prefix)
	}
	return normalized
}

// NormalizeAction 归一化动作为大写 HTTP 方法
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
