package swap

import (
	"sort"

	"github.com/google/uuid"
	"github.com/zhiban/zhiban/pkg/model"
)

// Recommendation 换班推荐
type Recommendation struct {
	StaffID   uuid.UUID `json:"staff_id"`
	StaffName string    `json:"staff_name"`
	Score     float64   `json:"score"`
	SwapType  string    `json:"swap_type"` // take_over 接班 / exchange 互换
	// ExchangeDate 互换时对方让出的值班日
	ExchangeDate string `json:"exchange_date,omitempty"`
	Reason       string `json:"reason"`
	Rank         int    `json:"rank"`
}

// Options 推荐选项
type Options struct {
	MaxRecommendations int         // 最多返回条数
	AllowExchange      bool        // 是否同时考虑互换
	MinScore           float64     // 低于该分数的候选不返回
	Exclude            []uuid.UUID // 排除的人员
}

// DefaultOptions 返回默认推荐选项
func DefaultOptions() *Options {
	return &Options{
		MaxRecommendations: 5,
		AllowExchange:      true,
		MinScore:           60,
	}
}

// Recommender 换班推荐器
type Recommender struct {
	evaluator *Evaluator
}

// NewRecommender 创建换班推荐器
func NewRecommender(cons *model.Constraints) *Recommender {
	return &Recommender{evaluator: NewEvaluator(cons)}
}

// RecommendTargets 为某人某日的班推荐接班人选，按可行性评分降序
func (r *Recommender) RecommendTargets(
	sched *model.Schedule,
	staffList []*model.Staff,
	date string,
	fromID uuid.UUID,
	opts *Options,
) []Recommendation {
	if opts == nil {
		opts = DefaultOptions()
	}

	excluded := make(map[uuid.UUID]bool, len(opts.Exclude)+1)
	excluded[fromID] = true
	for _, id := range opts.Exclude {
		excluded[id] = true
	}

	var candidates []Recommendation
	for _, st := range staffList {
		if excluded[st.ID] {
			continue
		}

		eval := r.evaluator.Evaluate(sched, staffList, &Request{
			Date:        date,
			FromStaffID: fromID,
			ToStaffID:   st.ID,
		})
		if eval.Feasible && eval.Score >= opts.MinScore {
			candidates = append(candidates, Recommendation{
				StaffID:   st.ID,
				StaffName: st.Name,
				Score:     eval.Score,
				SwapType:  "take_over",
				Reason:    eval.Recommendation,
			})
		}

		if opts.AllowExchange {
			candidates = append(candidates, r.exchangeCandidates(sched, staffList, date, fromID, st, opts)...)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > opts.MaxRecommendations {
		candidates = candidates[:opts.MaxRecommendations]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	return candidates
}

// exchangeCandidates 评估与某人名下各值班日的互换
func (r *Recommender) exchangeCandidates(
	sched *model.Schedule,
	staffList []*model.Staff,
	date string,
	fromID uuid.UUID,
	target *model.Staff,
	opts *Options,
) []Recommendation {
	var out []Recommendation
	for _, exchangeDate := range sched.DatesFor(target.ID) {
		if exchangeDate == date {
			continue
		}
		eval := r.evaluator.Evaluate(sched, staffList, &Request{
			Date:         date,
			FromStaffID:  fromID,
			ToStaffID:    target.ID,
			ExchangeDate: exchangeDate,
		})
		if eval.Feasible && eval.Score >= opts.MinScore {
			out = append(out, Recommendation{
				StaffID:      target.ID,
				StaffName:    target.Name,
				Score:        eval.Score,
				SwapType:     "exchange",
				ExchangeDate: exchangeDate,
				Reason:       "互换班次，双方班次数不变",
			})
		}
	}
	return out
}

// FindReplacement 为突发请假找最佳接班人，无可行人选时返回nil
func (r *Recommender) FindReplacement(
	sched *model.Schedule,
	staffList []*model.Staff,
	staffID uuid.UUID,
	date string,
) *Recommendation {
	recs := r.RecommendTargets(sched, staffList, date, staffID, &Options{
		MaxRecommendations: 1,
		MinScore:           50,
	})
	if len(recs) == 0 {
		return nil
	}
	return &recs[0]
}
