package relay

import "sync"

// MinClientID is the lowest id the registry hands out; 0 is reserved as
// wire.ServerRoute.
const MinClientID = 1

// ClientRegistry tracks every registered Connection by three keys: id,
// nick, and source IP. The source mutates all three maps from a single
// connection's recv worker during registration and from either worker on
// teardown, so every access goes through the same mutex.
type ClientRegistry struct {
	mu     sync.RWMutex
	byID   map[int]*Connection
	byNick map[string]int
	byIP   map[string][]int
	nextID int
}

// NewClientRegistry creates an empty registry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{
		byID:   make(map[int]*Connection),
		byNick: make(map[string]int),
		byIP:   make(map[string][]int),
		nextID: MinClientID,
	}
}

// Register validates nick and, if available, assigns a new id to conn and
// indexes it under all three maps.
func (r *ClientRegistry) Register(nick, ip string, conn *Connection) (int, error) {
	if err := ValidateNick(nick); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byNick[nick]; exists {
		return 0, ErrNickAlreadyInUse
	}

	id := r.nextID
	r.nextID++

	conn.id = id
	conn.nick = nick
	conn.ip = ip

	r.byID[id] = conn
	r.byNick[nick] = id
	r.byIP[ip] = append(r.byIP[ip], id)

	return id, nil
}

// Remove unregisters id from all three maps. It is a no-op if id isn't
// registered.
func (r *ClientRegistry) Remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)
	delete(r.byNick, conn.nick)

	ips := r.byIP[conn.ip]
	for i, v := range ips {
		if v == id {
			r.byIP[conn.ip] = append(ips[:i], ips[i+1:]...)
			break
		}
	}
	if len(r.byIP[conn.ip]) == 0 {
		delete(r.byIP, conn.ip)
	}
}

// ByID returns the Connection registered under id.
func (r *ClientRegistry) ByID(id int) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byID[id]
	return conn, ok
}

// IDForNick resolves a nick to its registered id, for REQ_ID.
func (r *ClientRegistry) IDForNick(nick string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNick[nick]
	return id, ok
}

// NickForID resolves an id to its registered nick, for REQ_NICK.
func (r *ClientRegistry) NickForID(id int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return conn.nick, true
}

// Count returns the number of registered connections.
func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// ForEach calls fn for every registered Connection. fn must not mutate
// the registry.
func (r *ClientRegistry) ForEach(fn func(*Connection)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, conn := range r.byID {
		fn(conn)
	}
}
