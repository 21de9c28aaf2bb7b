package security_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mvinueza/contaec/pkg/security"
)

func guardAt(start time.Time) (*security.Guard, *time.Time) {
	current := start
	g := security.NewGuardWithClock(func() time.Time { return current })
	return g, &current
}

func TestCheckBruteForceAttempt_SecuenciaDeBloqueo(t *testing.T) {
	g, _ := guardAt(time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC))

	for i := 1; i <= 5; i++ {
		r := g.CheckBruteForceAttempt("contadora@empresa.ec")
		assert.True(t, r.Allowed, "intento %d debe permitirse", i)
		assert.Equal(t, i, r.Attempts)
		assert.Equal(t, 5-i, r.RemainingAttempts, "intentos restantes tras el intento %d", i)
	}

	r := g.CheckBruteForceAttempt("contadora@empresa.ec")
	assert.False(t, r.Allowed, "el sexto intento debe bloquearse")
	assert.Equal(t, 0, r.RemainingAttempts)
	assert.Greater(t, r.LockoutTime, time.Duration(0))
	assert.LessOrEqual(t, r.LockoutTime, 15*time.Minute)
}

func TestCheckBruteForceAttempt_VentanaExpira(t *testing.T) {
	g, clock := guardAt(time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC))

	for i := 0; i < 6; i++ {
		g.CheckBruteForceAttempt("usuario")
	}
	assert.False(t, g.CheckBruteForceAttempt("usuario").Allowed)

	// Pasados 15 minutos desde el último intento el historial se descarta.
	*clock = clock.Add(15 * time.Minute)
	r := g.CheckBruteForceAttempt("usuario")
	assert.True(t, r.Allowed)
	assert.Equal(t, 1, r.Attempts, "la ventana expirada reinicia el contador")
}

func TestCheckBruteForceAttempt_IntentoFallidoExtiendeElBloqueo(t *testing.T) {
	g, clock := guardAt(time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		g.CheckBruteForceAttempt("usuario")
	}
	*clock = clock.Add(10 * time.Minute)
	r := g.CheckBruteForceAttempt("usuario")
	assert.False(t, r.Allowed)
	assert.Equal(t, 5*time.Minute, r.LockoutTime,
		"el tiempo restante se mide desde el último intento registrado")
}

func TestClearBruteForceAttempts(t *testing.T) {
	g, _ := guardAt(time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		g.CheckBruteForceAttempt("usuario")
	}
	g.ClearBruteForceAttempts("usuario")

	r := g.CheckBruteForceAttempt("usuario")
	assert.True(t, r.Allowed, "tras un login exitoso el contador vuelve a cero")
	assert.Equal(t, 1, r.Attempts)
}

func TestCheckBruteForceAttempt_IdentificadoresIndependientes(t *testing.T) {
	g, _ := guardAt(time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC))

	for i := 0; i < 6; i++ {
		g.CheckBruteForceAttempt("bloqueado")
	}
	assert.False(t, g.CheckBruteForceAttempt("bloqueado").Allowed)
	assert.True(t, g.CheckBruteForceAttempt("otro").Allowed)
}

func TestCheckRateLimit_VentanaFija(t *testing.T) {
	start := time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC)
	g, clock := guardAt(start)

	for i := 0; i < 5; i++ {
		r := g.CheckRateLimit("10.0.0.1", 5, time.Minute)
		assert.True(t, r.Allowed, "petición %d", i+1)
		assert.Equal(t, 4-i, r.Remaining, "restantes tras la petición %d", i+1)
	}

	r := g.CheckRateLimit("10.0.0.1", 5, time.Minute)
	assert.False(t, r.Allowed, "la sexta supera el máximo")
	assert.Equal(t, 0, r.Remaining)
	assert.Equal(t, start.Add(time.Minute), r.ResetTime,
		"el reset es el fin de la ventana que abrió la primera petición")

	// La ventana se reinicia de forma perezosa.
	*clock = clock.Add(time.Minute)
	r = g.CheckRateLimit("10.0.0.1", 5, time.Minute)
	assert.True(t, r.Allowed)
	assert.Equal(t, 4, r.Remaining)
	assert.Equal(t, start.Add(2*time.Minute), r.ResetTime)
}

func TestCheckRateLimit_Concurrente(t *testing.T) {
	g := security.NewGuard()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				g.CheckRateLimit(fmt.Sprintf("cliente-%d", n%2), 50, time.Minute)
				g.CheckBruteForceAttempt(fmt.Sprintf("usuario-%d", n%2))
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
