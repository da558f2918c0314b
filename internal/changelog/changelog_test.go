package changelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/etfsave/internal/model"
	"github.com/Veraticus/etfsave/internal/testutil"
)

func change(code, field string, before, after float64) model.ChangeEntry {
	return model.ChangeEntry{
		Code:   code,
		Name:   code + " fund",
		Field:  field,
		Before: testutil.FloatPtr(before),
		After:  testutil.FloatPtr(after),
	}
}

func day(s string) time.Time {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAppend_NoChanges(t *testing.T) {
	existing := model.Changelog{model.NewChangelogBatch(day("2026-01-05"), []model.ChangeEntry{change("A", model.FieldTotalFee, 1, 2)})}

	cl, action := Append(existing, true, day("2026-01-06"), nil)
	assert.Equal(t, ActionNone, action)
	assert.False(t, action.NeedsWrite())
	assert.Equal(t, existing, cl)

	cl, action = Append(nil, false, day("2026-01-06"), []model.ChangeEntry{})
	assert.Equal(t, ActionCreated, action)
	assert.True(t, action.NeedsWrite())
	assert.NotNil(t, cl)
	assert.Empty(t, cl)
}

func TestAppend_NewDate(t *testing.T) {
	first := []model.ChangeEntry{change("A", model.FieldTotalFee, 1, 2)}
	second := []model.ChangeEntry{change("B", model.FieldOtherCost, 3, 4)}

	cl, action := Append(model.Changelog{}, true, day("2026-01-05"), first)
	assert.Equal(t, ActionAppended, action)

	cl, action = Append(cl, true, day("2026-02-01"), second)
	assert.Equal(t, ActionAppended, action)

	assert.Len(t, cl, 2)
	assert.Equal(t, "2026-01", cl[0].Month)
	assert.Equal(t, "2026-01-05", cl[0].UpdatedAt)
	assert.Equal(t, "2026-02", cl[1].Month)
	assert.Equal(t, "2026-02-01", cl[1].UpdatedAt)
	assert.Equal(t, second, cl[1].Changes)
}

func TestAppend_Idempotent(t *testing.T) {
	changes := []model.ChangeEntry{
		change("A", model.FieldTotalFee, 1, 2),
		change("B", model.FieldRealCost, 3, 4),
	}

	once, action := Append(model.Changelog{}, true, day("2026-03-10"), changes)
	assert.Equal(t, ActionAppended, action)

	twice, action := Append(once, true, day("2026-03-10"), changes)
	assert.Equal(t, ActionUnchanged, action)
	assert.False(t, action.NeedsWrite())
	assert.Equal(t, once, twice)

	reordered := []model.ChangeEntry{changes[1], changes[0]}
	_, action = Append(once, true, day("2026-03-10"), reordered)
	assert.Equal(t, ActionUnchanged, action)
}

func TestAppend_SameDayReplace(t *testing.T) {
	earlier := model.NewChangelogBatch(day("2026-03-09"), []model.ChangeEntry{change("Z", model.FieldTotalFee, 9, 8)})
	morning := []model.ChangeEntry{change("A", model.FieldTotalFee, 1, 2)}
	evening := []model.ChangeEntry{change("A", model.FieldTotalFee, 1, 3)}

	cl, _ := Append(model.Changelog{earlier}, true, day("2026-03-10"), morning)
	cl, action := Append(cl, true, day("2026-03-10"), evening)

	assert.Equal(t, ActionReplaced, action)
	assert.Len(t, cl, 2)
	assert.Equal(t, earlier, cl[0])
	assert.Equal(t, evening, cl[1].Changes)
}

func TestAppend_DoesNotModifyInput(t *testing.T) {
	morning := model.NewChangelogBatch(day("2026-03-10"), []model.ChangeEntry{change("A", model.FieldTotalFee, 1, 2)})
	existing := model.Changelog{morning}

	_, action := Append(existing, true, day("2026-03-10"), []model.ChangeEntry{change("A", model.FieldTotalFee, 1, 3)})

	assert.Equal(t, ActionReplaced, action)
	assert.Equal(t, morning, existing[0])
}

func TestSameChanges(t *testing.T) {
	a := change("A", model.FieldTotalFee, 1, 2)
	b := change("B", model.FieldTotalFee, 1, 2)
	nullAfter := model.ChangeEntry{Code: "A", Name: "A fund", Field: model.FieldTotalFee, Before: testutil.FloatPtr(1)}

	tests := []struct {
		name string
		x, y []model.ChangeEntry
		want bool
	}{
		{"both empty", nil, []model.ChangeEntry{}, true},
		{"same order", []model.ChangeEntry{a, b}, []model.ChangeEntry{a, b}, true},
		{"different order", []model.ChangeEntry{a, b}, []model.ChangeEntry{b, a}, true},
		{"different length", []model.ChangeEntry{a}, []model.ChangeEntry{a, b}, false},
		{"multiset counts", []model.ChangeEntry{a, a}, []model.ChangeEntry{a, b}, false},
		{"null differs from value", []model.ChangeEntry{a}, []model.ChangeEntry{nullAfter}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameChanges(tt.x, tt.y))
		})
	}
}
