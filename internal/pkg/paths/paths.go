package paths

import (
	"os"
	"path/filepath"
)

// DataDir 应用数据目录
func DataDir() string {
	userConfigDir, err := os.UserConfigDir()
	if err != nil || userConfigDir == "" {
		return filepath.Join(".", "data")
	}
	return filepath.Join(userConfigDir, "nexus")
}

// DefaultConfigFile 默认配置文件路径，文件不存在时返回空串
func DefaultConfigFile() string {
	path := filepath.Join(DataDir(), "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
