package embedded

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

// TestIsInitialized 测试初始化状态检测
func TestIsInitialized(t *testing.T) {
	// 重置状态
	initialized = false

	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}

	Init(fstest.MapFS{})

	if !IsInitialized() {
		t.Error("Expected IsInitialized() to return true after Init()")
	}

	// 重置状态以避免影响其他测试
	initialized = false
}

// TestReadFileNotInitialized 测试未初始化时读取嵌入资源
func TestReadFileNotInitialized(t *testing.T) {
	initialized = false

	_, err := ReadFile("data/presentation.yaml")
	if err == nil {
		t.Fatal("Expected error when calling ReadFile() before Init()")
	}
	if err.Error() != "embedded package not initialized, call Init() first" {
		t.Errorf("Unexpected error message: %v", err)
	}
	if Exists("data/presentation.yaml") {
		t.Error("未初始化时 Exists 应返回 false")
	}
}

// TestReadFileEmbedded 测试从嵌入资源读取，并处理 "./" 前缀
func TestReadFileEmbedded(t *testing.T) {
	Init(fstest.MapFS{
		"data/presentation.yaml": {Data: []byte("hero: {}\n")},
	})
	defer func() { initialized = false }()

	for _, path := range []string{"data/presentation.yaml", "./data/presentation.yaml"} {
		data, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%q) error: %v", path, err)
		}
		if string(data) != "hero: {}\n" {
			t.Errorf("ReadFile(%q): got %q", path, data)
		}
	}

	if !Exists("data/presentation.yaml") {
		t.Error("Exists 应返回 true")
	}
	if Exists("data/missing.yaml") {
		t.Error("不存在的文件 Exists 应返回 false")
	}
}

// TestReadFileFromDisk 测试非 data/ 路径从磁盘读取
func TestReadFileFromDisk(t *testing.T) {
	initialized = false
	path := filepath.Join(t.TempDir(), "track.mp3")
	if err := os.WriteFile(path, []byte("ID3"), 0o644); err != nil {
		t.Fatalf("写入临时文件失败: %v", err)
	}

	data, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(data) != "ID3" {
		t.Errorf("got %q, want ID3", data)
	}
	if !Exists(path) {
		t.Error("磁盘文件 Exists 应返回 true")
	}
}
