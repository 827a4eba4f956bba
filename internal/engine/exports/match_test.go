package exports_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/lockmap/internal/engine/exports"
)

func TestMatchSubpath(t *testing.T) {
	t.Parallel()

	keys := []string{
		".",
		"./a/*",
		"./a/special",
		"./a/b/*",
		"./a/b/*.js",
		"./folder/",
		"./folder/deep/",
		"./x/*.js",
		"./x/*",
		"./*",
	}

	tests := []struct {
		subpath string
		want    string
		ok      bool
	}{
		{subpath: ".", want: ".", ok: true},
		{subpath: "./a/special", want: "./a/special", ok: true},
		{subpath: "./a/other", want: "./a/*", ok: true},
		{subpath: "./a/b/c", want: "./a/b/*", ok: true},
		{subpath: "./a/b/c.js", want: "./a/b/*.js", ok: true},
		{subpath: "./folder/file.js", want: "./folder/", ok: true},
		{subpath: "./folder/deep/file.js", want: "./folder/deep/", ok: true},
		{subpath: "./x/y.js", want: "./x/*.js", ok: true},
		{subpath: "./x/y", want: "./x/*", ok: true},
		{subpath: "./top", want: "./*", ok: true},
		// The middle of a wildcard must not be empty.
		{subpath: "./a/", want: "./*", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.subpath, func(t *testing.T) {
			t.Parallel()
			got, ok := exports.MatchSubpath(tt.subpath, keys)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := exports.MatchSubpath("./nothing", []string{".", "./a"})
	assert.False(t, ok)
}

func TestMatchSubpath_OrderIndependent(t *testing.T) {
	t.Parallel()

	keys := []string{"./lib/", "./lib/*", "./lib/*.js", "./lib/*.mjs"}
	reversed := []string{"./lib/*.mjs", "./lib/*.js", "./lib/*", "./lib/"}

	for _, subpath := range []string{"./lib/a.js", "./lib/a.mjs", "./lib/a.css", "./lib/sub/a"} {
		first, _ := exports.MatchSubpath(subpath, keys)
		second, _ := exports.MatchSubpath(subpath, reversed)
		assert.Equal(t, first, second, subpath)
	}

	got, _ := exports.MatchSubpath("./lib/a.css", keys)
	assert.Equal(t, "./lib/*", got, "a wildcard beats a folder with the same base")
}

func TestReplaceMatch(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "./src/a/x.js", exports.ReplaceMatch("./a/x", "./a/*", "./src/a/*.js"))
	assert.Equal(t, "./dist/x/x.js", exports.ReplaceMatch("./x", "./*", "./dist/*/*.js"))
	assert.Equal(t, "./lib/deep/file.js", exports.ReplaceMatch("./folder/deep/file.js", "./folder/", "./lib/"))
	assert.Equal(t, "./index.js", exports.ReplaceMatch(".", ".", "./index.js"))
}
