// Package constraints 提供常用排班约束预设
//
// 预设只是前端初始化表单的起点，生成时仍以请求携带的约束为准
package constraints

import "github.com/zhiban/zhiban/pkg/model"

// Preset 命名约束预设
type Preset struct {
	Name        string             `json:"name"`
	DisplayName string             `json:"display_name"`
	Description string             `json:"description"`
	Constraints *model.Constraints `json:"constraints"`
}

// GetPresets 返回全部约束预设
func GetPresets() []Preset {
	return []Preset{
		{
			Name:        "standard",
			DisplayName: "标准双人值班",
			Description: "每日2人、月上限20班、最小休息11小时的默认配置，适合中等规模科室。",
			Constraints: model.DefaultConstraints(),
		},
		{
			Name:        "single",
			DisplayName: "单人值班",
			Description: "每日1人的小团队配置，适合5-8人的小科室或诊所。",
			Constraints: singleDuty(),
		},
		{
			Name:        "slotted",
			DisplayName: "席位制双人值班",
			Description: "第1席位由资深人员（资历4-6）担任，第2席位由资浅人员（资历1-3）担任，保证每日有带教能力。",
			Constraints: slottedDuty(),
		},
		{
			Name:        "weekend_heavy",
			DisplayName: "周末加强",
			Description: "周末需求提高到3人，适合周末工作量明显更大的岗位。",
			Constraints: weekendHeavy(),
		},
	}
}

// FindPreset 按名称查找预设，不存在返回nil
func FindPreset(name string) *Preset {
	for _, p := range GetPresets() {
		if p.Name == name {
			return &p
		}
	}
	return nil
}

func singleDuty() *model.Constraints {
	cons := model.DefaultConstraints()
	for _, day := range model.Weekdays {
		cons.DailyNeeds[day] = 1
	}
	cons.MaxShiftsPerMonth = 10
	return cons
}

func slottedDuty() *model.Constraints {
	cons := model.DefaultConstraints()
	cons.SlotSystem = &model.SlotSystem{
		Enabled:          true,
		Slot1Seniorities: []int{6, 5, 4},
		Slot2Seniorities: []int{3, 2, 1},
	}
	return cons
}

func weekendHeavy() *model.Constraints {
	cons := model.DefaultConstraints()
	cons.DailyNeeds["Saturday"] = 3
	cons.DailyNeeds["Sunday"] = 3
	return cons
}
