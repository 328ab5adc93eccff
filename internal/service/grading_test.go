package service

import (
	"math"
	"math/rand"
	"testing"

	"edusen/backend/internal/model"
)

func TestSubjectAverage(t *testing.T) {
	if got := SubjectAverage(14, 16); got != 15 {
		t.Errorf("SubjectAverage(14,16) = %v，期望 15", got)
	}
	if got := SubjectAverage(0, 20); got != 10 {
		t.Errorf("SubjectAverage(0,20) = %v，期望 10", got)
	}
}

func TestWeightedAverage_Example(t *testing.T) {
	entries := []WeightedEntry{
		{Average: SubjectAverage(14, 16), Coefficient: 3},
		{Average: SubjectAverage(10, 12), Coefficient: 1},
	}
	got, ok := WeightedAverage(entries)
	if !ok {
		t.Fatal("期望有结果")
	}
	if math.Abs(got-14.0) > 1e-9 {
		t.Errorf("期望 14.0，实际 %v", got)
	}
}

func TestWeightedAverage_Empty(t *testing.T) {
	got, ok := WeightedAverage(nil)
	if ok || got != 0 {
		t.Errorf("空输入期望 (0,false)，实际 (%v,%v)", got, ok)
	}

	got, ok = WeightedAverage([]WeightedEntry{{Average: 12, Coefficient: 0}})
	if ok || got != 0 {
		t.Errorf("系数和为 0 期望 (0,false)，实际 (%v,%v)", got, ok)
	}
}

// 性质：结果与顺序无关，且落在 [min, max] 之间
func TestWeightedAverage_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(8)
		entries := make([]WeightedEntry, n)
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := range entries {
			avg := float64(rng.Intn(41)) / 2
			entries[i] = WeightedEntry{Average: avg, Coefficient: float64(1 + rng.Intn(5))}
			lo = math.Min(lo, avg)
			hi = math.Max(hi, avg)
		}

		got, ok := WeightedAverage(entries)
		if !ok {
			t.Fatal("非空输入应有结果")
		}
		if got < lo-1e-9 || got > hi+1e-9 {
			t.Fatalf("结果 %v 超出 [%v, %v]", got, lo, hi)
		}

		shuffled := append([]WeightedEntry(nil), entries...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		again, _ := WeightedAverage(shuffled)
		if math.Abs(got-again) > 1e-9 {
			t.Fatalf("顺序改变结果: %v vs %v", got, again)
		}
	}
}

func TestRemark(t *testing.T) {
	tests := map[float64]string{
		17:   "Très bien",
		16:   "Très bien",
		14.5: "Bien",
		12:   "Assez bien",
		10:   "Passable",
		9.99: "Insuffisant",
		0:    "Insuffisant",
	}
	for avg, want := range tests {
		if got := Remark(avg); got != want {
			t.Errorf("Remark(%v) = %q，期望 %q", avg, got, want)
		}
	}
}

func TestGroupScores_IncompleteSubject(t *testing.T) {
	grades := []model.Grade{
		{StudentID: "e1", SubjectID: "math", Type: model.GradeTypeDevoir, Valeur: 14},
		{StudentID: "e1", SubjectID: "math", Type: model.GradeTypeComposition, Valeur: 16},
		{StudentID: "e1", SubjectID: "fr", Type: model.GradeTypeDevoir, Valeur: 9},
	}
	scores := GroupScores(grades)

	if avg, ok := scores["e1"]["math"].Average(); !ok || avg != 15 {
		t.Errorf("math 期望 (15,true)，实际 (%v,%v)", avg, ok)
	}
	if _, ok := scores["e1"]["fr"].Average(); ok {
		t.Error("仅一次评估的科目应不完整")
	}
}

func TestRank_Ties(t *testing.T) {
	ranks := Rank(map[string]float64{
		"a": 15.2,
		"b": 12,
		"c": 15.2,
		"d": 9.5,
	})
	want := map[string]int{"a": 1, "c": 1, "b": 3, "d": 4}
	for id, r := range want {
		if ranks[id] != r {
			t.Errorf("%s: 期望名次 %d，实际 %d", id, r, ranks[id])
		}
	}
}
