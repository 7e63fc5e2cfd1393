package services

// XP-to-level math. Level is a pure function of total XP and is never
// read back from storage.

const xpPerLevel = 100

func Level(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/xpPerLevel + 1
}

func XPInLevel(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp % xpPerLevel
}

func XPToNext(xp int) int {
	return xpPerLevel - XPInLevel(xp)
}

func Progress(xp int) int {
	p := XPInLevel(xp)
	if p < 0 {
		return 0
	}
	if p > xpPerLevel {
		return xpPerLevel
	}
	return p
}
