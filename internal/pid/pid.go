// Package pid implements a discrete PID controller whose memory is carried
// between process invocations by the caller.
package pid

import "math"

// Memory is the controller state that must survive between invocations.
type Memory struct {
	Integral    float64
	PrevError   float64
	Initialized bool
}

// Gains are the controller coefficients.
type Gains struct {
	Kp float64
	Ki float64
	Kd float64
}

// Controller is a PID controller with a rounded, clamped integer output.
type Controller struct {
	gains Gains

	outMin, outMax int
	// integralLimit bounds |integral|; zero disables clamping.
	integralLimit float64

	mem Memory
}

// New builds a controller producing outputs in [outMin, outMax].
func New(g Gains, outMin, outMax int, integralLimit float64) *Controller {
	if outMin > outMax {
		outMin, outMax = outMax, outMin
	}
	return &Controller{
		gains:         g,
		outMin:        outMin,
		outMax:        outMax,
		integralLimit: math.Abs(integralLimit),
	}
}

// State returns a copy of the controller memory.
func (c *Controller) State() Memory { return c.mem }

// SetState restores memory saved by a previous invocation.
func (c *Controller) SetState(m Memory) { c.mem = m }

// Reset clears the integrator and derivative history.
func (c *Controller) Reset() { c.mem = Memory{} }

// Result carries the output and the terms used to produce it.
type Result struct {
	Output     int
	Raw        float64
	Error      float64
	Integral   float64
	Derivative float64
}

// Compute advances the controller by dt (same unit the gains were tuned
// for) and returns the actuator level. A non-positive dt only evaluates the
// proportional term and leaves memory untouched.
func (c *Controller) Compute(setpoint, measured, dt float64) Result {
	e := setpoint - measured

	if dt <= 0 {
		raw := c.gains.Kp*e + c.gains.Ki*c.mem.Integral
		return Result{Output: c.clampRound(raw), Raw: raw, Error: e, Integral: c.mem.Integral}
	}

	integral := c.mem.Integral + e*dt
	if c.integralLimit > 0 {
		integral = math.Max(-c.integralLimit, math.Min(c.integralLimit, integral))
	}

	var derivative float64
	if c.mem.Initialized {
		derivative = (e - c.mem.PrevError) / dt
	}

	raw := c.gains.Kp*e + c.gains.Ki*integral + c.gains.Kd*derivative

	c.mem = Memory{Integral: integral, PrevError: e, Initialized: true}

	return Result{
		Output:     c.clampRound(raw),
		Raw:        raw,
		Error:      e,
		Integral:   integral,
		Derivative: derivative,
	}
}

func (c *Controller) clampRound(v float64) int {
	if math.IsNaN(v) {
		return c.outMin
	}
	r := int(math.Round(v))
	if r < c.outMin {
		return c.outMin
	}
	if r > c.outMax {
		return c.outMax
	}
	return r
}
