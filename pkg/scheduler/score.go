// Package scheduler 实现按资历公平目标的月度值班生成算法
package scheduler

import (
	"math"
	"time"

	"github.com/zhiban/zhiban/pkg/model"
)

// 评分权重。数值本身可调，但各项的相对优先级固定：
// 指定日 > 层级保护 > 超目标惩罚 > 紧迫度 > 目标缺口 > 间隔分散 > 星期多样性 > 随机扰动
const (
	baseScore = 1000.0

	// 指定值班日的固定加分，压倒其余所有项
	requiredBonus = 5000.0

	// 优待日加分系数（按资历线性放大）
	beneficialPerSeniority = 40.0

	// 紧迫度：剩余目标 / 剩余可排天数，超过中位阈值后系数跳升
	urgencyThreshold  = 0.5
	urgencyLowWeight  = 300.0
	urgencyHighWeight = 1200.0

	// 目标缺口加分与超目标惩罚（惩罚须数倍于加分，强力抑制超额）
	deficitBonus      = 400.0
	overTargetPenalty = 1500.0

	// 间隔分散：距上次值班越久加分越多
	spreadPerDay       = 15.0
	neverAssignedBonus = 60.0

	// 周末公平：资历的四次方惩罚 + 周末班累计惩罚 + 层级保护惩罚
	weekendSeniorityFactor = 0.08
	weekendRepeatPenalty   = 400.0
	hierarchyPenalty       = 3000.0

	// 星期多样性惩罚
	varietyPenalty = 120.0

	// 随机扰动上限（打破并列，非确定性由调用方注入的随机源控制）
	jitterRange = 20.0
)

// score 计算候选人当日的期望度评分，分高者优先
// 对当前统计快照的纯函数，统计由调用方在选定后更新
func (r *run) score(st *model.Staff, day dayInfo) float64 {
	stats := r.sched.StaffStats[st.ID]
	score := baseScore

	// 指定值班日
	if st.RequiredDays.Contains(day.date) {
		score += requiredBonus
	}

	// 优待日：达到资历门槛的人员按资历加分
	if r.cons.IsBeneficialDay(day.weekday) && st.Seniority >= r.cons.BeneficialDaysThreshold {
		score += float64(st.Seniority) * beneficialPerSeniority
	}

	// 紧迫度：月末临近而目标未达时强力拉升，防止月末休假者默默漏掉公平目标
	remaining := stats.TargetShifts - stats.ShiftCount
	if remaining > 0 {
		avail := r.remainingAssignableDays(st, day)
		ratio := 1.0
		if avail > 0 {
			ratio = float64(remaining) / float64(avail)
			if ratio > 1 {
				ratio = 1
			}
		}
		if ratio > urgencyThreshold {
			score += urgencyHighWeight * ratio
		} else {
			score += urgencyLowWeight * ratio
		}
	}

	// 目标缺口 / 超目标
	if remaining > 0 {
		score += float64(remaining) * deficitBonus
	} else if remaining < 0 {
		score -= float64(-remaining) * overTargetPenalty
	}

	// 间隔分散
	if stats.LastShiftDate == "" {
		score += neverAssignedBonus
	} else if since := daysBetween(stats.LastShiftDate, day.date); since > 0 {
		score += float64(since) * spreadPerDay
	}

	// 周末公平
	if day.weekend {
		score -= weekendSeniorityFactor * math.Pow(float64(st.Seniority), 4)
		score -= float64(stats.WeekendShifts) * weekendRepeatPenalty

		// 层级保护：存在周末负担不高于本人的更资浅者时重罚，
		// 以评分方式维持"资深者周末负担不得多于资浅者"的不变量
		for _, other := range r.staff {
			if other.Seniority >= st.Seniority {
				continue
			}
			if r.sched.StaffStats[other.ID].WeekendShifts <= stats.WeekendShifts {
				score -= hierarchyPenalty
			}
		}
	}

	// 星期多样性：同一星期几出现次数越多越降分
	score -= float64(stats.DaysAssigned[day.weekday]) * varietyPenalty

	// 随机扰动
	score += r.gen.rng.Float64() * jitterRange

	return score
}

// pairingAdjust 资历搭配调整：与当日最近入选者零资历差适度降分，
// 资历差越大加分越多（鼓励同一天资深/资浅搭班）
const (
	pairSameSeniorityPenalty = 250.0
	pairGapBonus             = 60.0
)

func pairingAdjust(candidate, last *model.Staff) float64 {
	gap := candidate.Seniority - last.Seniority
	if gap < 0 {
		gap = -gap
	}
	if gap == 0 {
		return -pairSameSeniorityPenalty
	}
	return float64(gap) * pairGapBonus
}

// remainingAssignableDays 从次日到月末估算本人还可被安排的天数
// 采用约束感知版本：排除已知的休假日与意愿排除日
func (r *run) remainingAssignableDays(st *model.Staff, day dayInfo) int {
	idx, ok := r.index[day.date]
	if !ok {
		return 0
	}
	count := 0
	for _, future := range r.days[idx+1:] {
		if st.LeaveDays.Contains(future.date) || st.Unavailability.Contains(future.date) {
			continue
		}
		count++
	}
	return count
}

// daysBetween 两个ISO日期之间的天数（to - from）
func daysBetween(from, to string) int {
	f, err1 := time.Parse("2006-01-02", from)
	t, err2 := time.Parse("2006-01-02", to)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(t.Sub(f).Hours() / 24)
}
