package loader

import "github.com/db47h/ofs"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithRoots sets the resource directories layered into the overlay, replacing DefaultRoots.
//
// Parameters:
//   - roots: directories to search
//
// Returns:
//   - LoaderBuilderOption: a function that applies the roots option to a loader
func WithRoots(roots ...string) LoaderBuilderOption {
	return func(l *loader) {
		l.roots = append([]string(nil), roots...)
	}
}

// WithFileSystem reads resources from fs instead of an overlay of directories.
//
// Parameters:
//   - fs: the file system to read from
//
// Returns:
//   - LoaderBuilderOption: a function that applies the file system option to a loader
func WithFileSystem(fs ofs.FileSystem) LoaderBuilderOption {
	return func(l *loader) {
		l.fs = fs
	}
}

// WithWorkers sets the maximum number of concurrent reads used by Preload. Values below 1 are ignored.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}
