package playlist

// Playlist holds an ordered collection of items.
type Playlist struct {
	items []Item
}

// NewPlaylist creates a new empty playlist.
func NewPlaylist() *Playlist {
	return &Playlist{
		items: make([]Item, 0),
	}
}

// Add appends items to the playlist.
func (p *Playlist) Add(items ...Item) {
	p.items = append(p.items, items...)
}

// Insert inserts item at index. An index equal to Len appends.
// Returns false if index is out of bounds.
func (p *Playlist) Insert(index int, item Item) bool {
	if index < 0 || index > len(p.items) {
		return false
	}
	p.items = append(p.items, Item{})
	copy(p.items[index+1:], p.items[index:])
	p.items[index] = item
	return true
}

// Remove removes the item at the given index.
// Returns false if index is out of bounds.
func (p *Playlist) Remove(index int) bool {
	if index < 0 || index >= len(p.items) {
		return false
	}
	p.items = append(p.items[:index], p.items[index+1:]...)
	return true
}

// Clear removes all items from the playlist.
func (p *Playlist) Clear() {
	p.items = p.items[:0]
}

// Set replaces the whole content with a copy of items.
func (p *Playlist) Set(items []Item) {
	p.items = append(make([]Item, 0, len(items)), items...)
}

// Items returns a copy of all items.
func (p *Playlist) Items() []Item {
	result := make([]Item, len(p.items))
	copy(result, p.items)
	return result
}

// Item returns the item at the given index, or nil if out of bounds.
func (p *Playlist) Item(index int) *Item {
	if index < 0 || index >= len(p.items) {
		return nil
	}
	return &p.items[index]
}

// Len returns the number of items.
func (p *Playlist) Len() int {
	return len(p.items)
}

// IndexOf locates ref, preferring an InstanceID match.
func (p *Playlist) IndexOf(ref Item) int {
	return IndexOf(p.items, ref)
}
