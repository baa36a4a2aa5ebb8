package service

import (
	"math"
	"time"

	"lingua_learn_backend/internal/model"
)

// 连续学习奖励经验分档
const (
	streakBonusBase   = 10
	streakBonusWeek3  = 15
	streakBonusWeek7  = 20
	streakBonusWeek30 = 25
)

// UpdateStreak 按日历天更新连续学习记录，返回发放的奖励经验。
// 比较的是日历天而不是时间戳，同一天内重复调用是幂等的。
// 首次练习只锚定日期，不发奖励；隔天续上才发。
func UpdateStreak(p *model.UserProgress, now time.Time, thresholds []model.LevelThreshold) int {
	if p == nil {
		return 0
	}

	today := Midnight(now)

	if p.LastPracticeDate == nil {
		p.CurrentStreak = 0
		p.LastPracticeDate = &today
		return 0
	}

	diffDays := DaysBetween(today, Midnight(*p.LastPracticeDate))

	switch {
	case diffDays == 0:
		// 今天已经记过了
		return 0
	case diffDays == 1:
		p.CurrentStreak++
		if p.CurrentStreak > p.LongestStreak {
			p.LongestStreak = p.CurrentStreak
		}
		p.LastPracticeDate = &today
		bonus := streakBonus(p.CurrentStreak)
		AddXP(p, bonus, thresholds)
		return bonus
	default:
		// 断档，重新开始计数
		p.CurrentStreak = 1
		p.LastPracticeDate = &today
		return 0
	}
}

// streakBonus 根据连续天数取奖励档位
func streakBonus(days int) int {
	switch {
	case days >= 30:
		return streakBonusWeek30
	case days >= 7:
		return streakBonusWeek7
	case days >= 3:
		return streakBonusWeek3
	default:
		return streakBonusBase
	}
}

// Midnight 归一化到当天零点
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween 两个零点时刻之间的日历天数，a 在后为正
func DaysBetween(a, b time.Time) int {
	return int(math.Round(a.Sub(b).Hours() / 24))
}
