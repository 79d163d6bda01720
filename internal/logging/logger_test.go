package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, level string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, Initialize(dir, level))
	t.Cleanup(CloseAll)
	return dir
}

func readCategoryLog(t *testing.T, dir string, category Category) string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_"+string(category)+".log") {
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			return string(data)
		}
	}
	return ""
}

func TestInitializeRequiresDir(t *testing.T) {
	assert.Error(t, Initialize("", "info"))
}

func TestCategorySeparation(t *testing.T) {
	dir := setup(t, "info")

	Router("routed to %s", "chat")
	Store("saved conversation %s", "abc")

	routerLog := readCategoryLog(t, dir, CategoryRouter)
	storeLog := readCategoryLog(t, dir, CategoryStore)

	assert.Contains(t, routerLog, "routed to chat")
	assert.NotContains(t, routerLog, "saved conversation")
	assert.Contains(t, storeLog, "saved conversation abc")
}

func TestLevelFiltering(t *testing.T) {
	dir := setup(t, "warn")

	l := Get(CategoryLLM)
	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	body := readCategoryLog(t, dir, CategoryLLM)
	assert.NotContains(t, body, "debug message")
	assert.NotContains(t, body, "info message")
	assert.Contains(t, body, "[WARN] warn message")
	assert.Contains(t, body, "[ERROR] error message")
}

func TestUninitializedIsNoOp(t *testing.T) {
	CloseAll()
	// Must not panic or create files.
	Router("no destination")
	Get(CategoryChat).Error("still no destination")
}

func TestGetReturnsSameLogger(t *testing.T) {
	setup(t, "info")
	assert.Same(t, Get(CategoryDiscovery), Get(CategoryDiscovery))
}

func TestTimer(t *testing.T) {
	dir := setup(t, "debug")

	timer := StartTimer(CategoryAnalyzer, "codex run")
	elapsed := timer.Stop()
	assert.GreaterOrEqual(t, elapsed.Nanoseconds(), int64(0))

	body := readCategoryLog(t, dir, CategoryAnalyzer)
	assert.Contains(t, body, "codex run completed in")
}
