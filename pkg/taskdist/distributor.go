// Package taskdist 实现任务列的逐日贪心分配
//
// 任务列是值班表之外的具名辅助任务（如手术、门诊）。分配器一次处理一个列，
// 在现有分配表的副本上合并结果，其他列的数据原样保留。与值班生成器相比
// 它是纯贪心的逐日算法：没有两轮结构，也没有收尾的异常分析。
package taskdist

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
)

// Params 单次分配的输入
type Params struct {
	// 目标月份的全部日期
	Days []time.Time

	// 全量人员名单（准入规则在名单上筛选）
	StaffList []*model.Staff

	// 已生成的值班表，用于排除前一日值过班的人员（可为nil）
	Schedule *model.Schedule

	// 现有任务分配（不被修改，结果在副本上合并）
	Current model.TaskAssignments

	// 本次分配的列配置与下标
	Column      model.TaskColumn
	ColumnIndex int

	// 只填空：已有分配的日期跳过，公平计数以现状为起点
	FillEmptyOnly bool
}

// Distributor 任务列分配器
type Distributor struct {
	rng *rand.Rand
	log *logger.DistributorLogger
}

// Option 分配器选项
type Option func(*Distributor)

// WithRand 注入随机源（测试中传入固定种子保证可复现）
func WithRand(rng *rand.Rand) Option {
	return func(d *Distributor) {
		d.rng = rng
	}
}

// NewDistributor 创建分配器
func NewDistributor(opts ...Option) *Distributor {
	d := &Distributor{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		log: logger.NewDistributorLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// tracking 单人分配计数（只填空模式下以现有分配预置）
type tracking struct {
	count int
	weeks map[int]struct{} // ISO周 -> 已分配
}

// Distribute 为单个任务列执行分配，返回合并后的完整分配表
//
// 诊断性告警（无准入人员、某日无可用人员）只走结构化日志，
// 不进入值班表的日志流
func (d *Distributor) Distribute(p Params) model.TaskAssignments {
	out := p.Current.Clone()
	if out == nil {
		out = make(model.TaskAssignments)
	}

	eligible := eligibleStaff(p.StaffList, p.Column)
	if len(eligible) == 0 {
		d.log.NoEligibleStaff(p.Column.Name)
		return out
	}

	targetDays := targetDays(p.Days, p.Column)
	if len(targetDays) == 0 {
		return out
	}

	track := make(map[uuid.UUID]*tracking, len(eligible))
	for _, st := range eligible {
		track[st.ID] = &tracking{weeks: make(map[int]struct{})}
	}

	// 只填空模式：现有分配计入公平计数，使新分配与既有状态衔接
	if p.FillEmptyOnly {
		for _, day := range targetDays {
			date := day.Format("2006-01-02")
			for _, id := range out.Get(date, p.ColumnIndex) {
				if tr, ok := track[id]; ok {
					tr.count++
					tr.weeks[isoWeek(day)] = struct{}{}
				}
			}
		}
	}

	// 均摊目标：总席位 / 准入人数（与值班目标不同，不按资历加权）
	totalSlots := len(targetDays) * p.Column.MaxPerDay
	targetPerPerson := totalSlots / len(eligible)

	for _, day := range targetDays {
		date := day.Format("2006-01-02")
		week := isoWeek(day)

		if p.FillEmptyOnly {
			if len(out.Get(date, p.ColumnIndex)) > 0 {
				continue
			}
		} else {
			out.Delete(date, p.ColumnIndex)
		}

		available := d.availableForDay(day, date, eligible, p, out)
		if len(available) == 0 {
			d.log.NoAvailableStaff(date, p.Column.Name)
			continue
		}

		selected := d.selectForDay(available, track, week, p.Column, targetPerPerson)

		ids := make([]uuid.UUID, len(selected))
		for i, st := range selected {
			ids[i] = st.ID
			tr := track[st.ID]
			tr.count++
			tr.weeks[week] = struct{}{}
		}
		out.Set(date, p.ColumnIndex, ids)
	}

	return out
}

// availableForDay 当日可用人员：排除休假、意愿排除、前一日值班、当日已分到其他列者
func (d *Distributor) availableForDay(day time.Time, date string, eligible []*model.Staff, p Params, tasks model.TaskAssignments) []*model.Staff {
	prevDate := day.AddDate(0, 0, -1).Format("2006-01-02")

	var out []*model.Staff
	for _, st := range eligible {
		if st.LeaveDays.Contains(date) || st.Unavailability.Contains(date) {
			continue
		}
		if p.Schedule != nil && p.Schedule.AssignedOn(prevDate, st.ID) {
			continue
		}
		if tasks.AssignedElsewhere(date, p.ColumnIndex, st.ID) {
			continue
		}
		out = append(out, st)
	}
	return out
}

// selectForDay 在当日可用人员中选出至多 MaxPerDay 人
//
// 先洗牌消除同分者的顺序偏倚，再按级联规则稳定排序：
// 未达均摊目标者优先 > 资历高者优先 > 累计次数少者优先 > 本周未分配者优先。
// 配置了期望资历组合时，先按组合顺序从未超目标者中精确匹配，再用排序结果补齐。
func (d *Distributor) selectForDay(available []*model.Staff, track map[uuid.UUID]*tracking, week int, column model.TaskColumn, targetPerPerson int) []*model.Staff {
	candidates := append([]*model.Staff(nil), available...)
	d.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		ta, tb := track[a.ID], track[b.ID]

		aUnder := ta.count < targetPerPerson
		bUnder := tb.count < targetPerPerson
		if aUnder != bUnder {
			return aUnder
		}
		if a.Seniority != b.Seniority {
			return a.Seniority > b.Seniority
		}
		if ta.count != tb.count {
			return ta.count < tb.count
		}
		_, aWorked := ta.weeks[week]
		_, bWorked := tb.weeks[week]
		if aWorked != bWorked {
			return !aWorked
		}
		return false
	})

	var selected []*model.Staff
	inSelected := func(st *model.Staff) bool {
		for _, s := range selected {
			if s.ID == st.ID {
				return true
			}
		}
		return false
	}

	if len(column.PreferredSeniorityMix) > 0 {
		for _, seniority := range column.PreferredSeniorityMix {
			if len(selected) >= column.MaxPerDay {
				break
			}
			for _, c := range candidates {
				if c.Seniority != seniority || inSelected(c) {
					continue
				}
				if track[c.ID].count > targetPerPerson {
					continue
				}
				selected = append(selected, c)
				break
			}
		}
	}

	for _, c := range candidates {
		if len(selected) >= column.MaxPerDay {
			break
		}
		if !inSelected(c) {
			selected = append(selected, c)
		}
	}

	return selected
}

// eligibleStaff 解析准入人员：显式名单优先，否则按资历白名单
func eligibleStaff(staffList []*model.Staff, column model.TaskColumn) []*model.Staff {
	var out []*model.Staff
	for _, st := range staffList {
		if len(column.EligibleStaffIDs) > 0 {
			for _, id := range column.EligibleStaffIDs {
				if id == st.ID {
					out = append(out, st)
					break
				}
			}
			continue
		}
		if len(column.EligibleSeniorities) > 0 {
			for _, s := range column.EligibleSeniorities {
				if s == st.Seniority {
					out = append(out, st)
					break
				}
			}
		}
	}
	return out
}

// targetDays 目标日期：星期匹配且非公共假日
func targetDays(days []time.Time, column model.TaskColumn) []time.Time {
	var out []time.Time
	for _, day := range days {
		if !column.MatchesWeekday(int(day.Weekday())) {
			continue
		}
		if IsPublicHoliday(day) {
			continue
		}
		out = append(out, day)
	}
	return out
}

// isoWeek ISO周序号（跨年安全的组合键）
func isoWeek(t time.Time) int {
	year, week := t.ISOWeek()
	return year*100 + week
}
