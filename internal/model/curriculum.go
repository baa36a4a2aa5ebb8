package model

// 课程目录为只读数据：部署时播种，运行期间不做修改。
// ID 采用 "级别-模块-课时" 的命名空间式字符串，例如 beginner-basics-1，
// level_completed 类成就依赖这一约定。

// CurriculumLevel 课程级别（beginner / intermediate / ...）
// swagger:model CurriculumLevel
type CurriculumLevel struct {
	ID         string             `gorm:"primaryKey;size:50" json:"id"`
	Name       string             `gorm:"size:100;not null" json:"name"`
	Order      int                `gorm:"default:0" json:"order"`
	RequiredXP int                `gorm:"default:0" json:"requiredXp"` // 进入该级别所需经验
	Modules    []CurriculumModule `gorm:"foreignKey:LevelID" json:"modules,omitempty"`
}

func (CurriculumLevel) TableName() string {
	return "curriculum_levels"
}

// CurriculumModule 级别下的模块
// swagger:model CurriculumModule
type CurriculumModule struct {
	ID      string             `gorm:"primaryKey;size:100" json:"id"`
	LevelID string             `gorm:"size:50;index;not null" json:"levelId"`
	Title   string             `gorm:"size:255;not null" json:"title"`
	Order   int                `gorm:"default:0" json:"order"`
	Lessons []CurriculumLesson `gorm:"foreignKey:ModuleID" json:"lessons,omitempty"`
}

func (CurriculumModule) TableName() string {
	return "curriculum_modules"
}

// CurriculumLesson 模块下的课时，完成后按 XPReward 发放经验
// swagger:model CurriculumLesson
type CurriculumLesson struct {
	ID       string `gorm:"primaryKey;size:100" json:"id"`
	ModuleID string `gorm:"size:100;index;not null" json:"moduleId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Order    int    `gorm:"default:0" json:"order"`
	XPReward int    `gorm:"default:10" json:"xpReward"`
}

func (CurriculumLesson) TableName() string {
	return "curriculum_lessons"
}

// LevelThreshold 等级表：等级号与达到该等级所需的累计经验
type LevelThreshold struct {
	Level      int `gorm:"primaryKey;autoIncrement:false" json:"level"`
	XPRequired int `gorm:"not null" json:"xpRequired"`
}

func (LevelThreshold) TableName() string {
	return "level_thresholds"
}
