package upload

// Service applies the naming rules for uploads: the original extension is
// always preserved, and the rest of the name is either kept or replaced by a
// random identifier of the configured length.
type Service struct {
	store      FileStore
	nameLength int
}

// NewService creates an upload service storing files through store, with
// generated names of nameLength characters.
func NewService(store FileStore, nameLength int) *Service {
	return &Service{
		store:      store,
		nameLength: nameLength,
	}
}

// Upload validates the request and stores its content, returning the name
// the file ended up under. The filename must carry an extension even in
// keep-name mode.
func (s *Service) Upload(req Request) (string, error) {
	ext, err := Extension(req.Filename)
	if err != nil {
		return "", err
	}

	if req.KeepName {
		return s.store.StoreNamed(req.Content, req.Filename)
	}
	return s.store.StoreRandom(req.Content, s.nameLength, ext)
}
