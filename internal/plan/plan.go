package plan

import (
	"context"
	"fmt"

	"reelpick/internal/fingerprint"
	"reelpick/internal/imaging"
	"reelpick/internal/media"
	"reelpick/internal/outputs"
	"reelpick/internal/scorecache"
)

// PhotoPlan previews what a photo run would do without touching the cache
// or the filesystem beyond listing inputs.
type PhotoPlan struct {
	InputDir       string   `json:"input_dir"`
	FilesToProcess []string `json:"files_to_process"`
	FilesToSkip    []string `json:"files_to_skip"`
	Unreadable     []string `json:"unreadable,omitempty"`
	OutputPaths    []string `json:"output_paths"`
}

// BuildPhoto fingerprints every image under inputDir and partitions the set
// by querying the score cache read-only: a valid cached record means the
// real run would skip the judge for that file. A missing cache file simply
// plans everything for processing.
func BuildPhoto(ctx context.Context, inputDir string, paths outputs.PhotoPaths) (*PhotoPlan, error) {
	images, err := imaging.CollectImages(inputDir)
	if err != nil {
		return nil, fmt.Errorf("plan photos: %w", err)
	}

	store, err := scorecache.OpenReadOnly(paths.CachePath())
	if err != nil {
		return nil, fmt.Errorf("plan photos: %w", err)
	}
	defer store.Close()

	result := &PhotoPlan{
		InputDir: inputDir,
		OutputPaths: []string{
			paths.SelectedDir(),
			paths.ScoresDir(),
			paths.Manifest(),
			paths.CachePath(),
		},
	}
	for _, path := range images {
		img, decodeErr := imaging.Decode(path)
		if decodeErr != nil {
			result.Unreadable = append(result.Unreadable, path)
			continue
		}
		fp := fingerprint.Compute(img)
		record, getErr := store.Get(ctx, path, fp.Hex())
		if getErr != nil {
			return nil, fmt.Errorf("plan photos: %w", getErr)
		}
		if record != nil {
			result.FilesToSkip = append(result.FilesToSkip, path)
		} else {
			result.FilesToProcess = append(result.FilesToProcess, path)
		}
	}
	return result, nil
}

// VideoPlan previews the outputs a video run would produce.
type VideoPlan struct {
	InputDir       string   `json:"input_dir"`
	FilesToProcess []string `json:"files_to_process"`
	OutputPaths    []string `json:"output_paths"`
}

// BuildVideo lists the source videos and the artifact paths a real run
// would create for each. Splitting happens fresh every run, so videos are
// always planned for processing.
func BuildVideo(inputDir string, paths outputs.VideoPaths, digestInFolder bool) (*VideoPlan, error) {
	videos, err := media.CollectVideos(inputDir)
	if err != nil {
		return nil, fmt.Errorf("plan videos: %w", err)
	}

	result := &VideoPlan{
		InputDir:       inputDir,
		FilesToProcess: videos,
		OutputPaths: []string{
			paths.TempDir(),
			paths.ClipsDir(),
			paths.ScoresDir(),
			paths.Manifest(),
			paths.CachePath(),
		},
	}
	for _, source := range videos {
		result.OutputPaths = append(result.OutputPaths,
			paths.SourceTempDir(source),
			paths.SourceClipsDir(source),
			paths.ConcatList(source),
			paths.Digest(source),
		)
		if digestInFolder {
			result.OutputPaths = append(result.OutputPaths, paths.FolderDigest(source))
		}
	}
	return result, nil
}
