package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tanagra-lang/tanagra/errs"
)

func TestManager_NonFatalAccumulates(t *testing.T) {
	m := errs.New()

	err := m.Report(errs.KindReduceReduceConflict, "A and B on x")
	require.NoError(t, err)

	err = m.Report(errs.KindShiftReduceConflict, "on ELSE")
	require.NoError(t, err)

	require.Equal(t, 1, m.ReduceReduceConflicts)
	require.Equal(t, 1, m.ShiftReduceConflicts)
	require.Equal(t, 2, m.ConflictCount())
	require.Len(t, m.Diagnostics(), 2)
}

func TestManager_FatalReturnsImmediately(t *testing.T) {
	m := errs.New()

	err := m.Report(errs.KindConflictExpectationMismatch, "want 0, got 1")
	require.Error(t, err)

	var fatal *errs.FatalError
	require.True(t, errors.As(err, &fatal))
	require.Equal(t, errs.KindConflictExpectationMismatch, fatal.Kind)

	// A fatal diagnostic is not accumulated for later inspection.
	require.Len(t, m.Diagnostics(), 0)
}

func TestKind_Fatal(t *testing.T) {
	require.True(t, errs.KindConflictExpectationMismatch.Fatal())
	require.True(t, errs.KindInternalInvariant.Fatal())
	require.False(t, errs.KindReduceReduceConflict.Fatal())
	require.False(t, errs.KindUnreducedProduction.Fatal())
}

func TestManager_CountOf(t *testing.T) {
	m := errs.New()
	_ = m.Report(errs.KindUnreducedProduction, "prod 3")
	_ = m.Report(errs.KindUnreducedProduction, "prod 7")
	_ = m.Report(errs.KindUndeclaredSymbol, "foo")

	require.Equal(t, 2, m.CountOf(errs.KindUnreducedProduction))
	require.Equal(t, 1, m.CountOf(errs.KindUndeclaredSymbol))
	require.Equal(t, 0, m.CountOf(errs.KindMultiplePrecedenceSources))
}
