package preview

// Manager bridges a selected file to a displayable preview for one avatar
// dialog instance. It owns at most one live handle.
type Manager struct {
	registry *Registry
	handle   *Handle
	file     *File
	display  string
	thumb    string
	err      error
}

// ThumbnailWidth is the width in cells of the cached preview thumbnail.
const ThumbnailWidth = 16

// NewManager creates a manager drawing handles from registry.
func NewManager(registry *Registry) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Manager{registry: registry}
}

// SelectFile replaces the active preview with one for file. The previous
// handle is released before the new one is created.
func (m *Manager) SelectFile(file File) {
	m.Release()
	m.handle = m.registry.Create(file)
	m.file = &file
	m.display = m.handle.URL()
	m.thumb = Thumbnail(file, ThumbnailWidth)
	m.err = nil
}

// SelectPath loads path and selects it. On failure the current preview is
// kept and the error is recorded.
func (m *Manager) SelectPath(path string) error {
	file, err := LoadFile(path)
	if err != nil {
		m.err = err
		return err
	}
	m.SelectFile(file)
	return nil
}

// Reset releases the active handle and displays a remote URL instead.
func (m *Manager) Reset(url string) {
	m.Release()
	m.display = url
	m.err = nil
}

// Release revokes the active handle, if any. It is safe to call repeatedly.
func (m *Manager) Release() {
	if m.handle == nil {
		return
	}
	if m.display == m.handle.URL() {
		m.display = ""
	}
	m.handle.Release()
	m.handle = nil
	m.file = nil
	m.thumb = ""
}

// Display returns the URL currently shown: a preview URL while a local file
// is selected, otherwise the remote avatar URL given to Reset.
func (m *Manager) Display() string {
	return m.display
}

// Selected returns the locally selected file, or nil.
func (m *Manager) Selected() *File {
	return m.file
}

// Thumbnail returns the selected file rendered once at selection time, or
// "" when nothing is selected.
func (m *Manager) Thumbnail() string {
	return m.thumb
}

// Err returns the last file selection error.
func (m *Manager) Err() error {
	return m.err
}

// Registry returns the registry backing this manager.
func (m *Manager) Registry() *Registry {
	return m.registry
}
