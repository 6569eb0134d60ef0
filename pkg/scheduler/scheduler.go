// Package scheduler 实现按资历公平目标的月度值班生成算法
package scheduler

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/logger"
	"github.com/zhiban/zhiban/pkg/model"
)

// Generator 值班表生成器
//
// 两轮算法：第一轮按时间顺序全局锁定所有指定值班日（仅校验休息间隔），
// 第二轮逐日贪心补齐每日需求，按评分函数选人并在选人过程中迭代重评分
// （资历搭配调整依赖当日已选人员）。全程单线程同步执行，无共享全局状态。
type Generator struct {
	rng *rand.Rand
	log *logger.SchedulerLogger
}

// Option 生成器选项
type Option func(*Generator)

// WithRand 注入随机源（测试中传入固定种子保证可复现）
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = rng
	}
}

// NewGenerator 创建生成器
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		log: logger.NewSchedulerLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// dayInfo 单日信息（预先解析，避免循环内重复解析日期）
type dayInfo struct {
	date    string // YYYY-MM-DD
	weekday string
	weekend bool
	time    time.Time
}

// run 单次生成的内部状态（统计随分配即时更新，作用域限于本次调用）
type run struct {
	gen   *Generator
	cons  *model.Constraints
	staff []*model.Staff
	byID  map[uuid.UUID]*model.Staff
	days  []dayInfo
	index map[string]int // 日期 -> days下标
	sched *model.Schedule
	gap   int // 两次值班的最小间隔天数
}

// Generate 生成目标月份的值班表
//
// 纯函数语义：输入在生成期间不被修改，返回的值班表附带统计、日志与目标明细。
// 业务规则冲突（需求缺口、指定日冲突等）只记入日志，不会返回错误；
// 错误仅用于边界输入校验失败。
func (g *Generator) Generate(staffList []*model.Staff, cons *model.Constraints) (*model.Schedule, error) {
	if cons == nil {
		return nil, fmt.Errorf("约束不能为空")
	}
	cons.Normalize()
	if err := cons.Validate(); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*model.Staff, len(staffList))
	for _, st := range staffList {
		if err := st.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[st.ID]; dup {
			return nil, fmt.Errorf("人员ID重复: %s", st.ID)
		}
		byID[st.ID] = st
	}

	monthStart, err := cons.Month()
	if err != nil {
		return nil, err
	}
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()

	days := make([]dayInfo, daysInMonth)
	index := make(map[string]int, daysInMonth)
	totalDemand := 0
	for i := 0; i < daysInMonth; i++ {
		t := monthStart.AddDate(0, 0, i)
		day := dayInfo{
			date:    t.Format("2006-01-02"),
			weekday: t.Weekday().String(),
			weekend: t.Weekday() == time.Saturday || t.Weekday() == time.Sunday,
			time:    t,
		}
		days[i] = day
		index[day.date] = i
		totalDemand += cons.NeedFor(day.weekday)
	}

	g.log.StartSchedule(cons.SelectedMonth, len(staffList), daysInMonth, totalDemand)
	start := time.Now()

	targets, details := ComputeTargets(staffList, totalDemand, cons.SelectedMonth, daysInMonth)

	sched := model.NewSchedule(cons.SelectedMonth)
	sched.TotalDemand = totalDemand
	sched.TargetDetails = details
	for _, day := range days {
		sched.Days[day.date] = []uuid.UUID{}
	}
	for _, st := range staffList {
		sched.StaffStats[st.ID] = model.NewStaffStats(targets[st.ID], st.Seniority)
		if detail := details[st.ID]; detail != nil && detail.TargetReduced {
			sched.Logf(model.LogInfo, "",
				"%s 月内休假 %d 天，公平目标按比例 %.2f 缩减", st.Name, detail.LeaveDays, detail.AvailabilityRatio)
		}
	}

	r := &run{
		gen:   g,
		cons:  cons,
		staff: staffList,
		byID:  byID,
		days:  days,
		index: index,
		sched: sched,
		gap:   cons.RequiredDayGap(),
	}

	r.lockRequiredDays()
	r.fillDays()
	r.analyzeAnomalies()

	g.log.ScheduleComplete(cons.SelectedMonth, time.Since(start), r.assignedTotal(), totalDemand)
	return sched, nil
}

// lockRequiredDays 第一轮：按时间顺序锁定所有指定值班日
//
// 指定值班是绝对的：不检查每日需求人数与月上限，只校验与已锁定值班的
// 休息间隔。同一人两个指定日冲突时，后处理的一个记错误日志并放弃。
func (r *run) lockRequiredDays() {
	for _, day := range r.days {
		for _, st := range r.staff {
			if !st.RequiredDays.Contains(day.date) {
				continue
			}
			if reason := r.restConflict(st, day); reason != "" {
				r.sched.Logf(model.LogError, day.date,
					"%s 的指定值班日 %s 与已锁定值班冲突（%s），未予安排", st.Name, day.date, reason)
				continue
			}
			r.assign(st, day)
			r.sched.Logf(model.LogSuccess, day.date, "%s 的指定值班日已锁定", st.Name)
		}
	}
}

// fillDays 第二轮：逐日贪心补齐需求
func (r *run) fillDays() {
	for _, day := range r.days {
		need := r.cons.NeedFor(day.weekday)
		assigned := len(r.sched.Days[day.date])
		if assigned >= need {
			continue
		}

		pool := r.candidatePool(day)
		if len(pool) < need-assigned {
			r.sched.Logf(model.LogWarning, day.date,
				"%s 候选人员不足：需补 %d 人，可用 %d 人", day.date, need-assigned, len(pool))
		}

		if r.cons.SlotSystem != nil && r.cons.SlotSystem.Enabled {
			r.fillWithSlots(day, need, pool)
		} else {
			r.fillGreedy(day, need, pool)
		}

		if shortfall := need - len(r.sched.Days[day.date]); shortfall > 0 {
			r.sched.Logf(model.LogError, day.date,
				"%s 需求未满足，缺 %d 人", day.date, shortfall)
		}
	}
}

// candidatePool 当日候选池：通过可用性过滤且尚未安排在当日的人员
func (r *run) candidatePool(day dayInfo) []*model.Staff {
	var pool []*model.Staff
	for _, st := range r.staff {
		if r.sched.AssignedOn(day.date, st.ID) {
			continue
		}
		if ok, _ := r.availableOn(st, day); ok {
			pool = append(pool, st)
		}
	}
	return pool
}

// fillWithSlots 席位制填充：每个席位使用各自的资历白名单独立选人
func (r *run) fillWithSlots(day dayInfo, need int, pool []*model.Staff) {
	for slot := len(r.sched.Days[day.date]); slot < need; slot++ {
		allowed := r.cons.SlotSystem.AllowedFor(slot)

		var best *model.Staff
		bestScore := 0.0
		for _, st := range pool {
			if r.sched.AssignedOn(day.date, st.ID) {
				continue
			}
			if !seniorityAllowed(st.Seniority, allowed) {
				continue
			}
			score := r.score(st, day)
			if best == nil || score > bestScore {
				best = st
				bestScore = score
			}
		}

		if best == nil {
			r.sched.Logf(model.LogWarning, day.date,
				"%s 第 %d 席位无匹配资历的可用人员，席位空置", day.date, slot+1)
			continue
		}
		r.assign(best, day)
	}
}

// fillGreedy 无席位制填充：每选一人后重新评分（资历搭配调整依赖当日最近入选者）
func (r *run) fillGreedy(day dayInfo, need int, pool []*model.Staff) {
	for len(r.sched.Days[day.date]) < need {
		var last *model.Staff
		if ids := r.sched.Days[day.date]; len(ids) > 0 {
			last = r.byID[ids[len(ids)-1]]
		}

		var best *model.Staff
		bestScore := 0.0
		bestIdx := -1
		for i, st := range pool {
			score := r.score(st, day)
			if last != nil {
				score += pairingAdjust(st, last)
			}
			if best == nil || score > bestScore {
				best = st
				bestScore = score
				bestIdx = i
			}
		}
		if best == nil {
			break
		}

		r.assign(best, day)
		pool = append(pool[:bestIdx], pool[bestIdx+1:]...)
	}
}

// assign 落实分配并即时更新统计
func (r *run) assign(st *model.Staff, day dayInfo) {
	r.sched.Assign(day.date, st.ID)

	stats := r.sched.StaffStats[st.ID]
	stats.ShiftCount++
	stats.DaysAssigned[day.weekday]++
	if day.weekend {
		stats.WeekendShifts++
	} else {
		stats.WeekdayShifts++
	}
	if day.date > stats.LastShiftDate {
		stats.LastShiftDate = day.date
	}
}

// assignedTotal 已分配总班次
func (r *run) assignedTotal() int {
	total := 0
	for _, ids := range r.sched.Days {
		total += len(ids)
	}
	return total
}

// analyzeAnomalies 收尾的公平性异常检查（只报告，不回改排班结果）
//
// 资浅者的总班次或周末班次少于资深者即视为层级异常，日志附带可能成因
// （意愿排除、休假、月上限）。
func (r *run) analyzeAnomalies() {
	for _, junior := range r.staff {
		for _, senior := range r.staff {
			if junior.Seniority >= senior.Seniority {
				continue
			}
			js := r.sched.StaffStats[junior.ID]
			ss := r.sched.StaffStats[senior.ID]
			if js.ShiftCount >= ss.ShiftCount && js.WeekendShifts >= ss.WeekendShifts {
				continue
			}

			var kind string
			if js.ShiftCount < ss.ShiftCount {
				kind = fmt.Sprintf("总班次 %d < %d", js.ShiftCount, ss.ShiftCount)
			} else {
				kind = fmt.Sprintf("周末班次 %d < %d", js.WeekendShifts, ss.WeekendShifts)
			}

			var factors []string
			if n := unavailableDaysInMonth(junior, r.sched.Month); n > 0 {
				factors = append(factors, fmt.Sprintf("意愿排除%d天", n))
			}
			if n := leaveDaysInMonth(junior, r.sched.Month); n > 0 {
				factors = append(factors, fmt.Sprintf("休假%d天", n))
			}
			if js.ShiftCount >= r.cons.MaxShiftsPerMonth {
				factors = append(factors, "已达月班次上限")
			}
			suffix := ""
			if len(factors) > 0 {
				suffix = "，可能成因：" + strings.Join(factors, "、")
			}

			r.sched.Logf(model.LogWarning, "",
				"层级异常：资历 %d 的 %s %s（对比资历 %d 的 %s）%s",
				junior.Seniority, junior.Name, kind, senior.Seniority, senior.Name, suffix)
		}
	}
}

// unavailableDaysInMonth 统计目标月份内的意愿排除天数
func unavailableDaysInMonth(st *model.Staff, month string) int {
	prefix := month + "-"
	count := 0
	for date := range st.Unavailability {
		if strings.HasPrefix(date, prefix) {
			count++
		}
	}
	return count
}

// seniorityAllowed 检查资历是否在白名单内（nil白名单表示不限）
func seniorityAllowed(seniority int, allowed []int) bool {
	if allowed == nil {
		return true
	}
	for _, s := range allowed {
		if s == seniority {
			return true
		}
	}
	return false
}
