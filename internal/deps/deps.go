// Package deps probes the external programs the audio acquirer shells out to.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"reelscript/internal/audio"
)

// Status reports whether one external program can be executed.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Probe checks the downloader and the transcoder it hands audio to.
// The downloader is required for AI transcription. The transcoder is
// optional: without it only untranscoded audio can be fetched.
func Probe(downloader string) []Status {
	dl := probeDownloader(downloader)
	return []Status{dl, probeTranscoder(dl)}
}

func probeDownloader(command string) Status {
	command = strings.TrimSpace(command)
	st := Status{Name: "yt-dlp", Command: command, Description: "Downloads audio for AI transcription"}
	if command == "" {
		st.Detail = "command not configured"
		return st
	}
	resolved, ok := audio.ResolveBinary(command)
	if !ok {
		st.Detail = fmt.Sprintf("binary %q not found", command)
		return st
	}
	st.Command = resolved
	st.Available = true
	return st
}

// probeTranscoder prefers an ffmpeg sitting next to a resolved downloader,
// which is where standalone yt-dlp bundles look first.
func probeTranscoder(downloader Status) Status {
	st := Status{Name: "FFmpeg", Command: "ffmpeg", Description: "Converts downloaded audio to mp3", Optional: true}
	if downloader.Available {
		sidecar := filepath.Join(filepath.Dir(downloader.Command), executable("ffmpeg"))
		if runnable(sidecar) {
			st.Command = sidecar
			st.Available = true
			return st
		}
	}
	if path, err := exec.LookPath("ffmpeg"); err == nil {
		st.Command = path
		st.Available = true
		return st
	}
	st.Detail = "binary \"ffmpeg\" not found; only untranscoded audio can be fetched"
	return st
}

func executable(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func runnable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return runtime.GOOS == "windows" || info.Mode().Perm()&0o111 != 0
}
