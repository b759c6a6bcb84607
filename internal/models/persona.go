package models

// Persona 专家人设静态描述（从外部目录加载，创建后不可变）
type Persona struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Location   string   `json:"location"`
	Industry   string   `json:"industry"`
	Expertise  []string `json:"expertise"`
	Experience string   `json:"experience"`
	Bio        string   `json:"bio"`
	Insights   []string `json:"insights"`
}

// AgentProfile 专家简介（用于元数据展示）
type AgentProfile struct {
	AgentID    string   `json:"agentId"`
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Location   string   `json:"location"`
	Industry   string   `json:"industry"`
	Expertise  []string `json:"expertise"`
	Experience string   `json:"experience"`
}

// ToProfile 将 Persona 转换为 AgentProfile
func (p *Persona) ToProfile() AgentProfile {
	return AgentProfile{
		AgentID:    p.ID,
		Name:       p.Name,
		Title:      p.Title,
		Location:   p.Location,
		Industry:   p.Industry,
		Expertise:  p.Expertise,
		Experience: p.Experience,
	}
}
