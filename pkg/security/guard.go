package security

import (
	"sync"
	"time"
)

// Política de bloqueo por fuerza bruta.
const (
	bruteForceMaxAttempts = 5
	bruteForceLockout     = 15 * time.Minute
)

// BruteForceResult resultado de registrar un intento de autenticación.
type BruteForceResult struct {
	Allowed           bool
	Attempts          int           // intentos consumidos dentro de la ventana
	RemainingAttempts int           // intentos que quedan antes del bloqueo
	LockoutTime       time.Duration // tiempo restante de bloqueo cuando Allowed es false
}

// RateLimitResult resultado de evaluar una petición contra la ventana fija.
type RateLimitResult struct {
	Allowed   bool
	Remaining int       // peticiones que quedan en la ventana actual
	ResetTime time.Time // fin de la ventana actual (para Retry-After)
}

type attemptRecord struct {
	count int
	last  time.Time
}

type windowCounter struct {
	start time.Time
	count int
}

// Guard protege los endpoints de autenticación con un contador de intentos
// fallidos por identificador y un rate limiter de ventana fija.
//
// Los registros caducados se limpian de forma perezosa al siguiente acceso
// del mismo identificador; los mapas no tienen tope de tamaño, así que un
// atacante con muchos identificadores distintos los hace crecer sin límite.
type Guard struct {
	mu       sync.Mutex
	attempts map[string]*attemptRecord
	windows  map[string]*windowCounter
	now      func() time.Time
}

// NewGuard construye el guard con el reloj del sistema.
func NewGuard() *Guard {
	return NewGuardWithClock(time.Now)
}

// NewGuardWithClock permite inyectar el reloj en pruebas de expiración.
func NewGuardWithClock(now func() time.Time) *Guard {
	return &Guard{
		attempts: make(map[string]*attemptRecord),
		windows:  make(map[string]*windowCounter),
		now:      now,
	}
}

// CheckBruteForceAttempt registra un intento para el identificador y decide
// si se permite. Tras bruteForceMaxAttempts intentos dentro de la ventana,
// los siguientes se rechazan con el tiempo restante de bloqueo; la ventana
// se reinicia sola cuando transcurre bruteForceLockout desde el último
// intento.
func (g *Guard) CheckBruteForceAttempt(id string) BruteForceResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	rec, ok := g.attempts[id]
	if ok && now.Sub(rec.last) >= bruteForceLockout {
		delete(g.attempts, id)
		rec, ok = nil, false
	}
	if ok && rec.count >= bruteForceMaxAttempts {
		return BruteForceResult{
			Allowed:     false,
			Attempts:    rec.count,
			LockoutTime: bruteForceLockout - now.Sub(rec.last),
		}
	}
	if !ok {
		rec = &attemptRecord{}
		g.attempts[id] = rec
	}
	rec.count++
	rec.last = now
	return BruteForceResult{
		Allowed:           true,
		Attempts:          rec.count,
		RemainingAttempts: bruteForceMaxAttempts - rec.count,
	}
}

// ClearBruteForceAttempts olvida el historial del identificador. Se invoca
// tras una autenticación exitosa.
func (g *Guard) ClearBruteForceAttempts(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.attempts, id)
}

// CheckRateLimit cuenta peticiones por identificador en una ventana fija.
// Superado el máximo, Allowed es false y ResetTime indica cuándo termina la
// ventana (el caller lo traduce a Retry-After). La ventana se reinicia de
// forma perezosa al primer acceso posterior a su fin.
func (g *Guard) CheckRateLimit(id string, max int, window time.Duration) RateLimitResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	w, ok := g.windows[id]
	if !ok || now.Sub(w.start) >= window {
		w = &windowCounter{start: now}
		g.windows[id] = w
	}
	w.count++
	remaining := max - w.count
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{
		Allowed:   w.count <= max,
		Remaining: remaining,
		ResetTime: w.start.Add(window),
	}
}
