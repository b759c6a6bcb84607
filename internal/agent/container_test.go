package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/run-bigpig/nexus/internal/models"
)

func catalogPersonas() []models.Persona {
	return []models.Persona{
		{ID: "ny-1", Name: "Sarah Mitchell", Location: "New York", Industry: "Fintech", Expertise: []string{"Fintech", "B2B SaaS"}},
		{ID: "ldn-1", Name: "Victoria Ashworth", Location: "London", Industry: "Financial Services", Expertise: []string{"Banking", "Compliance"}},
		{ID: "tky-1", Name: "Yuki Tanaka", Location: "Tokyo", Industry: "Technology", Expertise: []string{"AI", "Robotics"}},
		{ID: "sgp-1", Name: "Priya Sharma", Location: "Singapore", Industry: "Fintech", Expertise: []string{"Payments", "B2B SaaS", "SaaS"}},
	}
}

// TestContainer 测试专家容器
func TestContainer(t *testing.T) {
	provider := &fakeProvider{reply: sampleResponse}
	c := NewContainer()
	for _, p := range catalogPersonas() {
		c.Register(NewExpertAgent(p, provider))
	}

	t.Run("按ID获取", func(t *testing.T) {
		a, ok := c.Get("ny-1")
		require.True(t, ok)
		assert.Equal(t, "Sarah Mitchell", a.Name())

		_, ok = c.Get("nope")
		assert.False(t, ok)
	})

	t.Run("按ID列表保序获取", func(t *testing.T) {
		agents := c.GetByIDs([]string{"tky-1", "missing", "ny-1"})
		require.Len(t, agents, 2)
		assert.Equal(t, "tky-1", agents[0].ID())
		assert.Equal(t, "ny-1", agents[1].ID())
	})

	t.Run("数量", func(t *testing.T) {
		assert.Equal(t, 4, c.Len())
	})
}

// TestSelectByCriteria 测试条件筛选
func TestSelectByCriteria(t *testing.T) {
	all := catalogPersonas()

	t.Run("按行业过滤", func(t *testing.T) {
		selected := SelectByCriteria(all, models.SelectionCriteria{Industry: "fintech"})
		require.Len(t, selected, 2)
		assert.Equal(t, "ny-1", selected[0].ID)
		assert.Equal(t, "sgp-1", selected[1].ID)
	})

	t.Run("按地区过滤", func(t *testing.T) {
		selected := SelectByCriteria(all, models.SelectionCriteria{Location: "tokyo"})
		require.Len(t, selected, 1)
		assert.Equal(t, "tky-1", selected[0].ID)
	})

	t.Run("按专长过滤并按匹配度排序", func(t *testing.T) {
		selected := SelectByCriteria(all, models.SelectionCriteria{ExpertiseAreas: []string{"SaaS", "Payments"}})
		require.Len(t, selected, 2)
		// sgp-1 命中 Payments + B2B SaaS + SaaS，排在 ny-1 之前
		assert.Equal(t, "sgp-1", selected[0].ID)
		assert.Equal(t, "ny-1", selected[1].ID)
	})

	t.Run("MaxAgents截断", func(t *testing.T) {
		selected := SelectByCriteria(all, models.SelectionCriteria{MaxAgents: 2})
		assert.Len(t, selected, 2)
	})

	t.Run("无匹配返回空", func(t *testing.T) {
		selected := SelectByCriteria(all, models.SelectionCriteria{Industry: "agriculture"})
		assert.Empty(t, selected)
	})

	t.Run("空条件返回全部并保持目录顺序", func(t *testing.T) {
		selected := SelectByCriteria(all, models.SelectionCriteria{})
		require.Len(t, selected, len(all))
		for i, p := range all {
			assert.Equal(t, p.ID, selected[i].ID)
		}
	})
}

// TestAutoSelect 测试按想法自动选择
func TestAutoSelect(t *testing.T) {
	all := catalogPersonas()

	t.Run("行业与技术栈联合匹配", func(t *testing.T) {
		idea := models.StartupIdea{
			Industry:        "Fintech",
			TechnologyStack: []string{"Payments"},
		}
		selected := AutoSelect(all, idea, 5)
		require.Len(t, selected, 1)
		assert.Equal(t, "sgp-1", selected[0].ID)
	})

	t.Run("无匹配允许为空", func(t *testing.T) {
		idea := models.StartupIdea{Industry: "Mining"}
		assert.Empty(t, AutoSelect(all, idea, 5))
	})
}
