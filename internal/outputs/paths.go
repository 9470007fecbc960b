package outputs

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PhotoPaths lays out the on-disk artifacts for one photo batch.
type PhotoPaths struct {
	Root string
}

// NewPhotoPaths anchors the photo layout at the output root.
func NewPhotoPaths(root string) PhotoPaths {
	return PhotoPaths{Root: filepath.Clean(root)}
}

// SelectedDir holds the copies of every selected photo.
func (p PhotoPaths) SelectedDir() string {
	return filepath.Join(p.Root, "selected")
}

// ScoresDir holds per-item score sidecar files.
func (p PhotoPaths) ScoresDir() string {
	return filepath.Join(p.Root, "scores")
}

// ScoreFile is the score sidecar document for one source photo.
func (p PhotoPaths) ScoreFile(sourcePath string) string {
	return filepath.Join(p.ScoresDir(), Stem(sourcePath)+".json")
}

// Manifest is the batch manifest document.
func (p PhotoPaths) Manifest() string {
	return filepath.Join(p.Root, "manifest.photos.json")
}

// CachePath is the durable score cache for the batch.
func (p PhotoPaths) CachePath() string {
	return filepath.Join(p.Root, "photo_scores.sqlite")
}

// SelectedPhoto returns the destination for one selected source photo,
// prefixed with its selection rank so the directory sorts by score.
func (p PhotoPaths) SelectedPhoto(rank int, sourcePath string) string {
	name := filepath.Base(sourcePath)
	return filepath.Join(p.SelectedDir(), prefixRank(rank, name))
}

// VideoPaths lays out the on-disk artifacts for one video batch.
type VideoPaths struct {
	Root string
}

// NewVideoPaths anchors the video layout at the output root.
func NewVideoPaths(root string) VideoPaths {
	return VideoPaths{Root: filepath.Clean(root)}
}

// TempDir is the working tree holding intermediate splits and frames. Its
// base name doubles as the cleanup sentinel.
func (p VideoPaths) TempDir() string {
	return filepath.Join(p.Root, "temp")
}

// SourceTempDir holds the working artifacts for one source video.
func (p VideoPaths) SourceTempDir(sourcePath string) string {
	return filepath.Join(p.TempDir(), Stem(sourcePath))
}

// ConcatList is the ffmpeg concat list file for one source.
func (p VideoPaths) ConcatList(sourcePath string) string {
	return filepath.Join(p.TempDir(), "concat", Stem(sourcePath)+".txt")
}

// ClipsDir holds the selected clips copied out of the working tree.
func (p VideoPaths) ClipsDir() string {
	return filepath.Join(p.Root, "digest_clips")
}

// SourceClipsDir holds the selected clips for one source.
func (p VideoPaths) SourceClipsDir(sourcePath string) string {
	return filepath.Join(p.ClipsDir(), Stem(sourcePath))
}

// ScoresDir holds per-clip score sidecar files.
func (p VideoPaths) ScoresDir() string {
	return filepath.Join(p.Root, "scores")
}

// ScoreFile is the score sidecar document for one clip of a source video.
func (p VideoPaths) ScoreFile(sourcePath string, index int) string {
	return filepath.Join(p.ScoresDir(), Stem(sourcePath), fmt.Sprintf("clip_%04d.json", index))
}

// Manifest is the batch manifest document.
func (p VideoPaths) Manifest() string {
	return filepath.Join(p.Root, "manifest.videos.json")
}

// CachePath is the durable score cache for the batch.
func (p VideoPaths) CachePath() string {
	return filepath.Join(p.Root, "video_scores.sqlite")
}

// Digest returns the concatenated output path for one source.
func (p VideoPaths) Digest(sourcePath string) string {
	return filepath.Join(p.Root, Stem(sourcePath)+"_digest.mp4")
}

// FolderDigest is the secondary digest written beside the published clips
// of one source.
func (p VideoPaths) FolderDigest(sourcePath string) string {
	return filepath.Join(p.SourceClipsDir(sourcePath), "digest.mp4")
}

// Stem returns the file name without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func prefixRank(rank int, name string) string {
	return fmt.Sprintf("%04d_%s", rank, name)
}
