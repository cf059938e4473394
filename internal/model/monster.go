package model

// Monster is the room's shared antagonist.
type Monster struct {
	HP       int
	MaxHP    int
	BaseDamage int
	Age      int
	Level    int
	Alive    bool

	// VulnerableMagnitude/VulnerableTurns back Arcane Ward-style debuffs
	// that raise the monster's incoming damage for a few rounds.
	VulnerableMagnitude float64
	VulnerableTurns     int
}

// TickVulnerability decrements the vulnerability debuff's remaining turns,
// clearing it once exhausted.
func (m *Monster) TickVulnerability() {
	if m.VulnerableTurns <= 0 {
		return
	}
	m.VulnerableTurns--
	if m.VulnerableTurns == 0 {
		m.VulnerableMagnitude = 0
	}
}

// TakeDamage reduces HP by amount, clamped at 0, and marks the monster dead at 0.
func (m *Monster) TakeDamage(amount int) {
	m.HP -= amount
	if m.HP <= 0 {
		m.HP = 0
		m.Alive = false
	}
}

// Respawn resets the monster at newLevel with recomputed maxHP and age.
func (m *Monster) Respawn(newLevel, newMaxHP int) {
	m.Level = newLevel
	m.MaxHP = newMaxHP
	m.HP = newMaxHP
	m.Age = 0
	m.Alive = true
}
