package clock

import "time"

// Clock abstrae la hora actual para poder inyectarla en tests deterministas.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System devuelve el reloj real del sistema.
func System() Clock {
	return systemClock{}
}

// NowFunc adapta una función a Clock (útil en tests para congelar o avanzar la hora).
type NowFunc func() time.Time

// Now implementa Clock.
func (f NowFunc) Now() time.Time { return f() }
