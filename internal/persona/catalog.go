package persona

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/run-bigpig/nexus/internal/embed"
	"github.com/run-bigpig/nexus/internal/logger"
	"github.com/run-bigpig/nexus/internal/models"
)

var log = logger.New("Persona")

// ErrNotFound 指定 ID 的人设不存在
var ErrNotFound = errors.New("persona not found")

// Catalog 只读的人设目录
type Catalog interface {
	// All 返回全部人设，顺序稳定
	All() []models.Persona
	// Get 按 ID 查找人设
	Get(id string) (models.Persona, error)
}

// memoryCatalog 内存目录实现，加载一次后只读
type memoryCatalog struct {
	personas []models.Persona
	byID     map[string]models.Persona
}

var _ Catalog = &memoryCatalog{}

func newMemoryCatalog(personas []models.Persona) (*memoryCatalog, error) {
	byID := make(map[string]models.Persona, len(personas))
	for _, p := range personas {
		if p.ID == "" || p.Name == "" {
			return nil, fmt.Errorf("invalid persona record: id=%q name=%q", p.ID, p.Name)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id: %s", p.ID)
		}
		byID[p.ID] = p
	}
	return &memoryCatalog{personas: personas, byID: byID}, nil
}

// All 返回全部人设
func (c *memoryCatalog) All() []models.Persona {
	result := make([]models.Persona, len(c.personas))
	copy(result, c.personas)
	return result
}

// Get 按 ID 查找人设
func (c *memoryCatalog) Get(id string) (models.Persona, error) {
	p, ok := c.byID[id]
	if !ok {
		return models.Persona{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog Catalog
	defaultErr     error
)

// Default 返回嵌入的默认人设目录（进程内共享一份）
func Default() (Catalog, error) {
	defaultOnce.Do(func() {
		var personas []models.Persona
		if err := json.Unmarshal(embed.PersonasJSON, &personas); err != nil {
			defaultErr = fmt.Errorf("parse embedded personas error: %w", err)
			return
		}
		defaultCatalog, defaultErr = newMemoryCatalog(personas)
		if defaultErr == nil {
			log.Debug("loaded %d embedded personas", len(personas))
		}
	})
	return defaultCatalog, defaultErr
}

// LoadFile 从外部 YAML/JSON 文件加载人设目录
func LoadFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona catalog error: %w", err)
	}

	var personas []models.Persona
	// YAML 解析器同时兼容 JSON 输入
	if err := yaml.Unmarshal(data, &personas); err != nil {
		return nil, fmt.Errorf("parse persona catalog error: %w", err)
	}

	catalog, err := newMemoryCatalog(personas)
	if err != nil {
		return nil, err
	}
	log.Info("loaded %d personas from %s", len(personas), path)
	return catalog, nil
}
