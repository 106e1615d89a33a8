// Package weights resolves pretrained checkpoint identifiers to files in the
// torch hub cache. Downloading and parsing checkpoints is the training
// runtime's job; this package only answers "which file, and is it there".
package weights

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrUnknownID is returned for checkpoint identifiers outside the registry
var ErrUnknownID = errors.New("unknown checkpoint id")

// ID names a pretrained checkpoint
type ID string

const (
	RGBImageNet  ID = "rgb_imagenet"
	FlowImageNet ID = "flow_imagenet"
	RGBCharades  ID = "rgb_charades"
	FlowCharades ID = "flow_charades"

	RGBTA3N   ID = "rgb_ta3n"
	FlowTA3N  ID = "flow_ta3n"
	AudioTA3N ID = "audio_ta3n"

	R3D18      ID = "r3d_18"
	MC318      ID = "mc3_18"
	R2Plus1D18 ID = "r2plus1d_18"
)

// filenames maps checkpoint ids to their file names in the hub cache
var filenames = map[ID]string{
	RGBImageNet:  "rgb_imagenet.pt",
	FlowImageNet: "flow_imagenet.pt",
	RGBCharades:  "rgb_charades.pt",
	FlowCharades: "flow_charades.pt",
	RGBTA3N:      "rgb_ta3n.pth",
	FlowTA3N:     "flow_ta3n.pth",
	AudioTA3N:    "audio_ta3n.pth",
	R3D18:        "r3d_18-b3b3357e.pth",
	MC318:        "mc3_18-a90a0ba3.pth",
	R2Plus1D18:   "r2plus1d_18-91a641e6.pth",
}

// CacheDir returns the torch hub checkpoint cache directory:
// $XDG_CACHE_HOME/torch/hub/checkpoints, or ~/.cache/torch/hub/checkpoints
// when XDG_CACHE_HOME is unset.
func CacheDir() string {
	cache := os.Getenv("XDG_CACHE_HOME")
	if cache == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			// last resort, relative to the working directory
			return filepath.Join(".cache", "torch", "hub", "checkpoints")
		}
		cache = filepath.Join(home, ".cache")
	}
	return filepath.Join(cache, "torch", "hub", "checkpoints")
}

// Path returns the expected on-disk location for a checkpoint id
func Path(id ID) (string, error) {
	name, ok := filenames[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownID, string(id))
	}
	return filepath.Join(CacheDir(), name), nil
}

// Exists reports whether the checkpoint file is already in the cache
func Exists(id ID) bool {
	path, err := Path(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
