package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultCatalog 测试内置人设目录
func TestDefaultCatalog(t *testing.T) {
	catalog, err := Default()
	require.NoError(t, err)

	t.Run("内置十六位专家", func(t *testing.T) {
		assert.Len(t, catalog.All(), 16)
	})

	t.Run("按ID获取", func(t *testing.T) {
		p, err := catalog.Get("ny-1")
		require.NoError(t, err)
		assert.Equal(t, "Sarah Mitchell", p.Name)
		assert.Equal(t, "New York", p.Location)
		assert.NotEmpty(t, p.Expertise)
		assert.NotEmpty(t, p.Insights)
	})

	t.Run("未知ID", func(t *testing.T) {
		_, err := catalog.Get("nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ID唯一且非空", func(t *testing.T) {
		seen := make(map[string]bool)
		for _, p := range catalog.All() {
			assert.NotEmpty(t, p.ID)
			assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
			seen[p.ID] = true
		}
	})
}

// TestLoadFile 测试从文件加载人设目录
func TestLoadFile(t *testing.T) {
	t.Run("YAML文件", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "personas.yaml")
		content := `
- id: x-1
  name: Test Expert
  title: Advisor
  location: Berlin
  industry: Logistics
  expertise: [supply chain]
  experience: 10 years
  bio: Test bio.
  insights: [think in networks]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		catalog, err := LoadFile(path)
		require.NoError(t, err)
		require.Len(t, catalog.All(), 1)
		p, err := catalog.Get("x-1")
		require.NoError(t, err)
		assert.Equal(t, "Test Expert", p.Name)
	})

	t.Run("重复ID报错", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "personas.yaml")
		content := `
- id: x-1
  name: A
- id: x-1
  name: B
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("文件不存在", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
