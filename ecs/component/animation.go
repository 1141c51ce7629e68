package component

// Animation holds clip lengths in seconds. States bound to an animation
// finish when their clip's length has elapsed.
type Animation struct {
	Clips map[string]float64
}

// ClipLength reports the length of clip; unknown or non-positive clips are
// reported as missing.
func (a *Animation) ClipLength(clip string) (float64, bool) {
	if a == nil {
		return 0, false
	}
	l, ok := a.Clips[clip]
	if !ok || l <= 0 {
		return 0, false
	}
	return l, true
}

var AnimationComponent = NewComponent[Animation]()
