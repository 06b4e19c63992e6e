package main

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/cfgforge/restructure/jobrunner"
	"github.com/cfgforge/restructure/rerrors"
)

func TestClassifyResult_Success(t *testing.T) {
	status, attr, detail := classifyResult(jobrunner.Result{Region: "f"})
	require.Equal(t, "restructured", status)
	require.Equal(t, color.FgGreen, attr)
	require.Empty(t, detail)
}

func TestClassifyResult_StructureErrorIsRed(t *testing.T) {
	result := jobrunner.Result{Region: "f", Err: rerrors.Structure("untangle.Run", rerrors.ErrNotDAG)}
	status, attr, detail := classifyResult(result)
	require.Equal(t, "error", status)
	require.Equal(t, color.FgRed, attr)
	require.NotEmpty(t, detail)
}

func TestClassifyResult_MalformedInputIsYellow(t *testing.T) {
	result := jobrunner.Result{Region: "f", Err: rerrors.Malformed("untangle.Run", rerrors.ErrDanglingEdge)}
	status, attr, _ := classifyResult(result)
	require.Equal(t, "unrestructured", status)
	require.Equal(t, color.FgYellow, attr)
}

func TestClassifyResult_InternalInvariantIsRed(t *testing.T) {
	result := jobrunner.Result{Region: "f", Err: rerrors.Internal("weave.weaveSwitch", rerrors.ErrMissingPostDominator)}
	status, attr, _ := classifyResult(result)
	require.Equal(t, "internal-error", status)
	require.Equal(t, color.FgRed, attr)
}
