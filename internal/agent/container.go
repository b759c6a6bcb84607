package agent

import (
	"sort"
	"strings"
	"sync"

	"github.com/run-bigpig/nexus/internal/models"
)

// Container 专家容器，按 ID 注册与检索
type Container struct {
	agents map[string]Evaluator
	mu     sync.RWMutex
}

// NewContainer 创建专家容器
func NewContainer() *Container {
	return &Container{
		agents: make(map[string]Evaluator),
	}
}

// Register 注册专家，同 ID 覆盖
func (c *Container) Register(agents ...Evaluator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range agents {
		c.agents[a.ID()] = a
	}
}

// Get 获取指定专家
func (c *Container) Get(id string) (Evaluator, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.agents[id]
	return a, ok
}

// GetByIDs 按 ID 列表顺序获取专家，不存在的 ID 跳过
func (c *Container) GetByIDs(ids []string) []Evaluator {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []Evaluator
	for _, id := range ids {
		if a, ok := c.agents[id]; ok {
			result = append(result, a)
		}
	}
	return result
}

// Len 已注册专家数量
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.agents)
}

// SelectByCriteria 按条件筛选人设：行业、地区、专长均为包含匹配，
// 过滤后按匹配度打分取前 MaxAgents 个
func SelectByCriteria(all []models.Persona, criteria models.SelectionCriteria) []models.Persona {
	selected := all

	if criteria.Industry != "" {
		industry := strings.ToLower(criteria.Industry)
		selected = filterPersonas(selected, func(p models.Persona) bool {
			return strings.Contains(strings.ToLower(p.Industry), industry)
		})
	}
	if criteria.Location != "" {
		location := strings.ToLower(criteria.Location)
		selected = filterPersonas(selected, func(p models.Persona) bool {
			return strings.Contains(strings.ToLower(p.Location), location)
		})
	}
	if len(criteria.ExpertiseAreas) > 0 {
		queries := make([]string, 0, len(criteria.ExpertiseAreas))
		for _, e := range criteria.ExpertiseAreas {
			queries = append(queries, strings.ToLower(e))
		}
		selected = filterPersonas(selected, func(p models.Persona) bool {
			for _, exp := range p.Expertise {
				lower := strings.ToLower(exp)
				for _, q := range queries {
					if strings.Contains(lower, q) {
						return true
					}
				}
			}
			return false
		})
	}

	type scored struct {
		score   int
		persona models.Persona
	}
	ranked := make([]scored, 0, len(selected))
	for _, p := range selected {
		score := 1 // 基础分
		if criteria.Industry != "" && strings.Contains(strings.ToLower(p.Industry), strings.ToLower(criteria.Industry)) {
			score += 3
		}
		for _, exp := range p.Expertise {
			lower := strings.ToLower(exp)
			for _, q := range criteria.ExpertiseAreas {
				if strings.Contains(lower, strings.ToLower(q)) {
					score += 2
				}
			}
		}
		ranked = append(ranked, scored{score: score, persona: p})
	}

	// 同分保持原目录顺序
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	maxAgents := criteria.MaxAgents
	if maxAgents <= 0 || maxAgents > len(ranked) {
		maxAgents = len(ranked)
	}
	result := make([]models.Persona, 0, maxAgents)
	for _, s := range ranked[:maxAgents] {
		result = append(result, s.persona)
	}
	return result
}

// AutoSelect 根据创业想法自动挑选相关专家：
// 行业直接匹配，技术栈与商业模式作为专长检索词
func AutoSelect(all []models.Persona, idea models.StartupIdea, maxAgents int) []models.Persona {
	var expertiseTerms []string
	expertiseTerms = append(expertiseTerms, idea.TechnologyStack...)
	if idea.BusinessModel != "" {
		expertiseTerms = append(expertiseTerms, idea.BusinessModel)
	}

	// 过滤可能得到空结果，由创建会话一侧决定如何上报
	return SelectByCriteria(all, models.SelectionCriteria{
		Industry:       idea.Industry,
		ExpertiseAreas: expertiseTerms,
		MaxAgents:      maxAgents,
	})
}

func filterPersonas(personas []models.Persona, keep func(models.Persona) bool) []models.Persona {
	var result []models.Persona
	for _, p := range personas {
		if keep(p) {
			result = append(result, p)
		}
	}
	return result
}
