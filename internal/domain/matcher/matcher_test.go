package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
)

// Helper to create test record
func makeRecord(code, name string, g, r float64) attendance.Record {
	return attendance.Record{Code: code, Name: name, G: g, R: r}
}

func TestMatcher_ExactMatch(t *testing.T) {
	// Arrange
	secondary := []attendance.Record{
		makeRecord("101", "محمد علي", 5, 2),
		makeRecord("102", "سالم", 1, 1),
	}
	m := NewMatcher(DefaultConfig(), secondary)

	// Act
	result := m.FindMatch(makeRecord("101", "محمد علي", 5, 2))

	// Assert
	require.NotNil(t, result)
	assert.Equal(t, KindExact, result.Kind)
	assert.Equal(t, "101", result.Record.Code)
	assert.InDelta(t, 1.0, result.NameScore, 1e-9)
}

func TestMatcher_ExactAfterNormalization(t *testing.T) {
	// Arrange
	m := NewMatcher(DefaultConfig(), []attendance.Record{makeRecord("101", "أحمد ", 0, 0)})

	// Act
	result := m.FindMatch(makeRecord("101", "احمد", 0, 0))

	// Assert - diacritic and whitespace variants are the same name
	require.NotNil(t, result)
	assert.Equal(t, KindExact, result.Kind)
}

func TestMatcher_ExactBeatsEarlierFuzzyCandidate(t *testing.T) {
	// Arrange
	secondary := []attendance.Record{
		makeRecord("101", "محمد علي حسن", 1, 0),
		makeRecord("101", "محمد علي", 2, 0),
	}
	m := NewMatcher(DefaultConfig(), secondary)

	// Act
	result := m.FindMatch(makeRecord("101", "محمد علي", 0, 0))

	// Assert
	require.NotNil(t, result)
	assert.Equal(t, KindExact, result.Kind)
	assert.Equal(t, 2.0, result.Record.G)
}

func TestMatcher_FuzzyMatch(t *testing.T) {
	// Arrange - 2*2/(3+2) = 0.8
	m := NewMatcher(DefaultConfig(), []attendance.Record{makeRecord("101", "محمد علي", 5, 2)})

	// Act
	result := m.FindMatch(makeRecord("101", "محمد علي حسن", 5, 2))

	// Assert
	require.NotNil(t, result)
	assert.Equal(t, KindFuzzy, result.Kind)
	assert.InDelta(t, 0.8, result.NameScore, 1e-9)
}

func TestMatcher_FuzzyThresholdBoundary(t *testing.T) {
	// Arrange - 2*3/(5+5) = 0.6 exactly
	m := NewMatcher(DefaultConfig(), []attendance.Record{
		makeRecord("7", "محمد علي حسن خالد يوسف", 0, 0),
	})

	// Act
	result := m.FindMatch(makeRecord("7", "محمد علي حسن سالم عمر", 0, 0))

	// Assert - boundary is inclusive
	require.NotNil(t, result)
	assert.Equal(t, KindFuzzy, result.Kind)
}

func TestMatcher_FuzzyPicksFirstQualifyingCandidate(t *testing.T) {
	// Arrange
	secondary := []attendance.Record{
		makeRecord("101", "خالد", 9, 9),
		makeRecord("101", "محمد علي", 1, 0),
		makeRecord("101", "محمد علي حسن", 2, 0),
	}
	m := NewMatcher(DefaultConfig(), secondary)

	// Act
	result := m.FindMatch(makeRecord("101", "محمد علي حسن سالم", 0, 0))

	// Assert - both later candidates qualify; input order decides
	require.NotNil(t, result)
	assert.Equal(t, 1.0, result.Record.G)
}

func TestMatcher_CodeOnlyFallback(t *testing.T) {
	// Arrange
	secondary := []attendance.Record{
		makeRecord("101", "خالد", 3, 0),
		makeRecord("101", "يوسف", 4, 0),
	}
	m := NewMatcher(DefaultConfig(), secondary)

	// Act
	result := m.FindMatch(makeRecord("101", "محمد", 0, 0))

	// Assert - first same-code candidate, flagged as code-only
	require.NotNil(t, result)
	assert.Equal(t, KindCodeOnly, result.Kind)
	assert.Equal(t, 3.0, result.Record.G)
	assert.Equal(t, 0.0, result.NameScore)
}

func TestMatcher_CodeNameStrategy_RejectsDissimilarName(t *testing.T) {
	// Arrange
	config := Config{Strategy: StrategyCodeName, NameThreshold: 0.6}
	m := NewMatcher(config, []attendance.Record{makeRecord("101", "خالد", 3, 0)})

	// Act
	result := m.FindMatch(makeRecord("101", "محمد", 0, 0))

	// Assert
	assert.Nil(t, result)
}

func TestMatcher_MissingCode_NoFallbackAcrossCodes(t *testing.T) {
	// Arrange
	m := NewMatcher(DefaultConfig(), []attendance.Record{makeRecord("101", "محمد علي", 5, 2)})

	// Act
	result := m.FindMatch(makeRecord("202", "محمد علي", 5, 2))

	// Assert - identical name under a different code never matches
	assert.Nil(t, result)
	assert.False(t, m.HasCode("202"))
	assert.True(t, m.HasCode("101"))
}

func TestMatcher_EmptySecondary(t *testing.T) {
	m := NewMatcher(DefaultConfig(), nil)

	assert.Nil(t, m.FindMatch(makeRecord("1", "x", 0, 0)))
}

func TestMatcher_ZeroConfigGetsDefaults(t *testing.T) {
	m := NewMatcher(Config{}, nil)

	assert.Equal(t, DefaultConfig(), m.Config())
}

func TestBuildIndex_PreservesInsertionOrder(t *testing.T) {
	records := []attendance.Record{
		makeRecord("1", "a", 1, 0),
		makeRecord("2", "b", 2, 0),
		makeRecord("1", "c", 3, 0),
	}

	idx := BuildIndex(records, CodeKey)

	require.Len(t, idx.Lookup("1"), 2)
	assert.Equal(t, "a", idx.Lookup("1")[0].Name)
	assert.Equal(t, "c", idx.Lookup("1")[1].Name)
	assert.False(t, idx.Has("3"))
}

func TestCodeNameKey_Normalizes(t *testing.T) {
	assert.Equal(t,
		CodeNameKey(makeRecord("5", "أحمد  مصطفى", 0, 0)),
		CodeNameKey(makeRecord("5", "احمد مصطفي", 0, 0)),
	)
	assert.Equal(t, Key("5|احمد"), CodeNameKey(makeRecord("5", " أحمد ", 0, 0)))
}

func TestKind_Label(t *testing.T) {
	assert.Empty(t, KindExact.Label())
	assert.Empty(t, KindNone.Label())
	assert.NotEmpty(t, KindFuzzy.Label())
	assert.NotEmpty(t, KindCodeOnly.Label())
	assert.NotEqual(t, KindFuzzy.Label(), KindCodeOnly.Label())
}
