package domain

import "sort"

// levelThresholds[i] is the XP needed to reach level i+1.
var levelThresholds = []int{0, 100, 250, 450, 700, 1000, 1350, 1750, 2200, 2700, 3250, 3850, 4500, 5200, 6000}

// xpPerLevelAfterTable is the flat step once the table runs out.
const xpPerLevelAfterTable = 1000

// LevelForXP maps total XP to a level (1-based). Non-decreasing in xp.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	idx := sort.Search(len(levelThresholds), func(i int) bool { return levelThresholds[i] > xp })
	if idx < len(levelThresholds) {
		return idx
	}
	last := levelThresholds[len(levelThresholds)-1]
	return len(levelThresholds) + (xp-last)/xpPerLevelAfterTable
}

// XPForLevel returns the XP at which level is reached.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	if level <= len(levelThresholds) {
		return levelThresholds[level-1]
	}
	last := levelThresholds[len(levelThresholds)-1]
	return last + (level-len(levelThresholds))*xpPerLevelAfterTable
}

// XPToNextLevel is the XP still missing to reach the next level.
func XPToNextLevel(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return XPForLevel(LevelForXP(xp)+1) - xp
}
