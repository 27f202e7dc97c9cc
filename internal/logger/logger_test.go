package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogFilePathDefaultsToWorkdir(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := logFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("filename want %s got %s", defaultLogFilename, filepath.Base(got))
	}
	if filepath.Base(filepath.Dir(got)) != defaultLogDirName {
		t.Fatalf("dir want %s got %s", defaultLogDirName, filepath.Dir(got))
	}
	// 目录与日志文件都应已创建
	if _, err := os.Stat(got); err != nil {
		t.Fatalf("log file should be touched: %v", err)
	}
}

func TestReleaseModeWritesJSONToFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "orders.log"})
	log.Info("order_created")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "orders.log"))
	if err != nil {
		t.Fatalf("read log file failed: %v", err)
	}
	if !strings.Contains(string(content), "order_created") {
		t.Fatalf("log file should contain the event, got %s", string(content))
	}
	if !strings.Contains(string(content), `"message"`) {
		t.Fatalf("release log should be JSON encoded, got %s", string(content))
	}
}

func TestDebugModeStaysOnConsole(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("debug", Options{Dir: tmpDir, Filename: "debug.log"})
	log.Info("checkout_started")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create a log file")
	}
}
