package translate

import "strings"

// Decorator reshapes a translation using the text it replaces.
type Decorator func(origin, target string) string

// Decorators maps the names used in job definitions to their functions.
var Decorators = map[string]Decorator{
	"CommentSpaceStandard":    CommentSpaceStandard,
	"SkillTreeDescription":    SkillTreeDescription,
	"MobSkillForSkillName":    MobSkillForSkillName,
	"MobSkillForMobName":      MobSkillForMobName,
	"MobSkillForSkillNameSQL": MobSkillForSkillNameSQL,
	"MobSkillForMobNameSQL":   MobSkillForMobNameSQL,
}

// CommentSpaceStandard renders a trailing comment as " text".
func CommentSpaceStandard(_, target string) string {
	return " " + strings.TrimSpace(target)
}

// SkillTreeDescription keeps the job part of "Job#Skill#".
func SkillTreeDescription(origin, target string) string {
	fields := strings.Split(origin, "#")
	if len(fields) != 3 {
		return target
	}
	return " " + strings.TrimSpace(fields[0]) + "#" + target + "#"
}

// MobSkillForSkillName rewrites the skill half of "Mob@Skill".
func MobSkillForSkillName(origin, target string) string {
	fields := strings.Split(origin, "@")
	if len(fields) != 2 {
		return target
	}
	return strings.TrimSpace(fields[0]) + "@" + target
}

// MobSkillForMobName rewrites the mob half of ",Mob@Skill".
func MobSkillForMobName(origin, target string) string {
	fields := strings.Split(origin, "@")
	if len(fields) != 2 {
		return target
	}
	return "," + target + "@" + strings.TrimSpace(fields[1])
}

// MobSkillForSkillNameSQL is MobSkillForSkillName for quoted SQL values.
func MobSkillForSkillNameSQL(origin, target string) string {
	fields := strings.Split(origin, "@")
	if len(fields) != 2 {
		return target
	}
	return strings.TrimSpace(fields[0]) + "@" + target + "'"
}

// MobSkillForMobNameSQL is MobSkillForMobName for quoted SQL values.
func MobSkillForMobNameSQL(origin, target string) string {
	fields := strings.Split(origin, "@")
	if len(fields) != 2 {
		return target
	}
	return ",'" + target + "@" + strings.TrimSpace(fields[1])
}

// Escape backslash-escapes single quotes for SQL string literals.
func Escape(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}
