package manager

import "context"

// Downloader acquires model bytes for a host model ID. Implementations call
// progress with values in [0,1] as the transfer advances; ordering and
// throttling of publications is the Manager's concern, not the
// implementation's. Download blocks until terminal success or failure and
// honors ctx cancellation.
type Downloader interface {
	Download(ctx context.Context, modelID string, progress func(float64)) error
}

// Loader asks the inference engine to load a model. A false return with nil
// error means the engine declined; an error means it failed. Load is assumed
// idempotent enough to retry.
type Loader interface {
	Load(ctx context.Context, modelID string) (bool, error)
}

// ListedModel is one entry of the host's downloadable-model listing.
type ListedModel struct {
	ID           string
	DisplayName  string
	IsDownloaded bool
}

// ModelLister exposes the host's view of models: the runtime IDs it assigns
// and whether each model's bytes already exist locally.
type ModelLister interface {
	ListAvailableModels(ctx context.Context) ([]ListedModel, error)
}

// DownloaderFunc adapts a function to the Downloader interface.
type DownloaderFunc func(ctx context.Context, modelID string, progress func(float64)) error

func (f DownloaderFunc) Download(ctx context.Context, modelID string, progress func(float64)) error {
	return f(ctx, modelID, progress)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, modelID string) (bool, error)

func (f LoaderFunc) Load(ctx context.Context, modelID string) (bool, error) {
	return f(ctx, modelID)
}
