package system

// StateNames maps character intents to the states that express them. An
// empty name, or one the machine does not know, disables that intent.
type StateNames struct {
	Walk       string
	Sprint     string
	Jump       string
	Aim        string
	Reload     string
	Wave       string
	Hit        string
	LookAround string
}

func DefaultStateNames() StateNames {
	return StateNames{
		Walk:       "Walk",
		Sprint:     "Sprint",
		Jump:       "Jump",
		Aim:        "Aim",
		Reload:     "Reload",
		Wave:       "Wave",
		Hit:        "Flinch",
		LookAround: "LookAround",
	}
}
