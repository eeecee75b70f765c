package translate

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FORMAT ARGUMENT TESTS
// =============================================================================

func TestFormatSpecifiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"no arguments", nil},
		{"%s has %d zeny", []string{"%s", "%d"}},
		{"%-10s|%05.2f|%*d|%.*s", []string{"%-10s", "%05.2f", "%*d", "%.*s"}},
		{"100%% sure, %lu left", []string{"%%", "%"}},
		{"%+d %#x %c %p", []string{"%+d", "%#x", "%c", "%p"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSpecifiers(tt.in))
		})
	}
}

func TestParseMessages(t *testing.T) {
	t.Parallel()

	mf := ParseMessages("conf/msg_conf/map_msg.conf", bom+`// map messages
0: Warped.
 1 : Map not found: %s
2: Time: %02d:%02d
abc: not a number
no colon here
//3: commented %d
import: conf/msg_conf/import/map_msg_conf.txt
Import_CHS: conf/msg_conf/map_msg_chs.conf
`)

	assert.Equal(t, []string{"conf/msg_conf/import/map_msg_conf.txt", "conf/msg_conf/map_msg_chs.conf"}, mf.Imports)
	assert.Len(t, mf.Messages, 3)
	assert.Equal(t, Message{Text: "Map not found: %s", Format: []string{"%s"}}, mf.Messages[1])
	assert.Equal(t, "Time: %02d:%02d", mf.Messages[2].Text)
	assert.Equal(t, []string{"%02d", "%02d"}, mf.Messages[2].Format)
	assert.NotContains(t, mf.Messages, 3)
}

func formatWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	msg := filepath.Join(dir, "conf", "msg_conf")
	writeFile(t, filepath.Join(msg, "map_msg.conf"), bom+"0: Warped.\n1: Map not found: %s\n2: %d of %d\nimport: conf/msg_conf/map_msg_chs.conf\n")
	writeFile(t, filepath.Join(msg, "map_msg_chs.conf"), bom+"0: 已传送.\n1: 找不到地图\n2: %d / %d\n9: 额外 %s\nimport: conf/msg_conf/map_msg_cht.conf\n")
	writeFile(t, filepath.Join(msg, "map_msg_cht.conf"), bom+"1: 找不到地圖 %s %s\nimport: conf/msg_conf/map_msg_chs.conf\n")
	return dir
}

func TestFormatChecker_Check(t *testing.T) {
	t.Parallel()

	dir := formatWorkspace(t)
	c := NewFormatChecker(dir, "")
	var files []string
	c.OnFile = func(entry, file string) {
		assert.Equal(t, "conf/msg_conf/map_msg.conf", entry)
		files = append(files, file)
	}

	got, err := c.Check()
	require.NoError(t, err)

	assert.Equal(t, []string{"conf/msg_conf/map_msg_chs.conf", "conf/msg_conf/map_msg_cht.conf"}, files)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, "conf/msg_conf/map_msg_chs.conf", got[0].File)
	assert.Empty(t, got[0].Got.Format)
	assert.Equal(t, []string{"%s"}, got[0].Want.Format)

	assert.Equal(t, 1, got[1].ID)
	assert.Equal(t, "conf/msg_conf/map_msg_cht.conf", got[1].File)
	assert.Equal(t, []string{"%s", "%s"}, got[1].Got.Format)
	assert.Contains(t, got[1].String(), "message 1")
}

func TestFormatChecker_AllMatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	msg := filepath.Join(dir, "etc", "msg_conf")
	writeFile(t, filepath.Join(msg, "login_msg.conf"), "1: %s failed\nimport: etc/msg_conf/login_msg_chs.conf\n")
	writeFile(t, filepath.Join(msg, "login_msg_chs.conf"), "1: %s 失败\n")

	c := NewFormatChecker(dir, "etc")
	assert.True(t, cmp.Equal([]string{
		"etc/msg_conf/login_msg.conf",
		"etc/msg_conf/char_msg.conf",
		"etc/msg_conf/map_msg.conf",
	}, c.Entries))

	got, err := c.Check()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFormatChecker_MissingImport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "conf", "msg_conf", "char_msg.conf"), "import: conf/msg_conf/gone.conf\n")

	_, err := NewFormatChecker(dir, "conf").Check()
	require.ErrorIs(t, err, ErrMessageFileNotFound)
	assert.Contains(t, err.Error(), "gone.conf")
}
