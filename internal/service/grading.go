package service

import (
	"math"
	"sort"

	"edusen/backend/internal/model"
)

// SubjectAverage 单科平均分：两次评估的算术平均
func SubjectAverage(score1, score2 float64) float64 {
	return (score1 + score2) / 2
}

// WeightedEntry 加权平均的一项
type WeightedEntry struct {
	Average     float64
	Coefficient float64
}

// WeightedAverage Σ(avg·coef) / Σ(coef)
// 没有条目或系数和为 0 时返回 (0, false)
func WeightedAverage(entries []WeightedEntry) (float64, bool) {
	var sum, coefs float64
	for _, e := range entries {
		sum += e.Average * e.Coefficient
		coefs += e.Coefficient
	}
	if len(entries) == 0 || coefs <= 0 {
		return 0, false
	}
	return sum / coefs, true
}

// Round2 保留两位小数
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Remark 按平均分给出评语
func Remark(avg float64) string {
	switch {
	case avg >= 16:
		return "Très bien"
	case avg >= 14:
		return "Bien"
	case avg >= 12:
		return "Assez bien"
	case avg >= 10:
		return "Passable"
	default:
		return "Insuffisant"
	}
}

// SubjectScores 某学生某科某学期的评估
type SubjectScores struct {
	SubjectID   string
	Devoir      *float64
	Composition *float64
}

// Average 两次评估齐全时返回平均分
func (s SubjectScores) Average() (float64, bool) {
	if s.Devoir == nil || s.Composition == nil {
		return 0, false
	}
	return SubjectAverage(*s.Devoir, *s.Composition), true
}

// GroupScores 按 学生 → 科目 聚合成绩
func GroupScores(grades []model.Grade) map[string]map[string]*SubjectScores {
	out := make(map[string]map[string]*SubjectScores)
	for i := range grades {
		g := grades[i]
		bySubject, ok := out[g.StudentID]
		if !ok {
			bySubject = make(map[string]*SubjectScores)
			out[g.StudentID] = bySubject
		}
		sc, ok := bySubject[g.SubjectID]
		if !ok {
			sc = &SubjectScores{SubjectID: g.SubjectID}
			bySubject[g.SubjectID] = sc
		}
		v := g.Valeur
		switch g.Type {
		case model.GradeTypeDevoir:
			sc.Devoir = &v
		case model.GradeTypeComposition:
			sc.Composition = &v
		}
	}
	return out
}

// Rank 按平均分降序排名，并列同名次（1, 2, 2, 4）
// 比较前保留两位小数
func Rank(averages map[string]float64) map[string]int {
	type entry struct {
		id  string
		avg float64
	}
	list := make([]entry, 0, len(averages))
	for id, avg := range averages {
		list = append(list, entry{id: id, avg: Round2(avg)})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].avg != list[j].avg {
			return list[i].avg > list[j].avg
		}
		return list[i].id < list[j].id
	})

	ranks := make(map[string]int, len(list))
	for i, e := range list {
		if i > 0 && e.avg == list[i-1].avg {
			ranks[e.id] = ranks[list[i-1].id]
			continue
		}
		ranks[e.id] = i + 1
	}
	return ranks
}
