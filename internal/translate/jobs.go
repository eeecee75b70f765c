package translate

import "pandaskit/internal/charset"

// Shared patterns of the plain-text databases.
const (
	// The name is the first non-numeric column after AegisName.
	dbNamePattern      = `(//|)(\d+)(,[^,]*,(?:\d+,)*)([^,]*)(,.*?)$`
	mobGroupPattern    = `(//|)(.*?,)(\d+)(,.*?)(.*?)(,.*)`
	commentNamePattern = `(//.*?|.*?)(\d+)(.*?//)(.*)`
	groupNamePattern   = `(//.*?,|.*?,)(\d+)(.*?//)(.*)`
	sqlMobSkillPattern = `(.*?\()(\d+)(,.*?)(,'.*?',)(\d+)(,.*)`
)

// DefaultJobs returns the item, mob, skill, quest, group, channel and
// storage datasets of a Pandas workspace, in processing order.
func DefaultJobs() []Job {
	return []Job{
		{
			Kind:   KindLine,
			Params: Params{Table: "itemname", Pattern: dbNamePattern, IDGroup: 2, ReplaceGroup: 4, SaveEncoding: charset.UTF8BOM},
			Files:  []string{"db/re/item_db.txt", "db/pre-re/item_db.txt"},
		},
		{
			Kind:   KindLine,
			Params: Params{Table: "mobname", Pattern: dbNamePattern, IDGroup: 2, ReplaceGroup: 4, SaveEncoding: charset.UTF8BOM},
			Files:  []string{"db/re/mob_db.txt", "db/pre-re/mob_db.txt"},
		},
		{
			Kind:   KindLine,
			Params: Params{Table: "mobname", Pattern: mobGroupPattern, IDGroup: 3, ReplaceGroup: 5, SaveEncoding: charset.UTF8BOM},
			Files: []string{
				"db/re/mob_boss.txt", "db/pre-re/mob_boss.txt",
				"db/re/mob_branch.txt", "db/pre-re/mob_branch.txt",
				"db/re/mob_poring.txt", "db/pre-re/mob_poring.txt",
				"db/mob_classchange.txt",
				"db/mob_mission.txt",
				"db/mob_pouch.txt",
			},
		},
		{
			Kind: KindLine,
			Params: Params{
				Table: "itemname", Pattern: commentNamePattern, IDGroup: 2, ReplaceGroup: 4,
				Decorate: "CommentSpaceStandard", SaveEncoding: charset.UTF8BOM,
			},
			Files: []string{
				"db/re/item_flag.txt", "db/pre-re/item_flag.txt",
				"db/re/item_delay.txt", "db/pre-re/item_delay.txt",
				"db/re/item_buyingstore.txt", "db/pre-re/item_buyingstore.txt",
				"db/re/item_noequip.txt", "db/pre-re/item_noequip.txt",
				"db/re/item_stack.txt", "db/pre-re/item_stack.txt",
				"db/re/item_trade.txt", "db/pre-re/item_trade.txt",
				"db/item_avail.txt",
				"db/item_nouse.txt",
			},
		},
		{
			Kind: KindLine,
			Params: Params{
				Table: "itemname", Pattern: groupNamePattern, IDGroup: 2, ReplaceGroup: 4,
				Decorate: "CommentSpaceStandard", SaveEncoding: charset.UTF8BOM,
			},
			Files: []string{
				"db/re/item_bluebox.txt", "db/pre-re/item_bluebox.txt",
				"db/re/item_cardalbum.txt", "db/pre-re/item_cardalbum.txt",
				"db/re/item_violetbox.txt", "db/pre-re/item_violetbox.txt",
				"db/re/item_giftbox.txt", "db/pre-re/item_giftbox.txt",
				"db/re/item_misc.txt", "db/pre-re/item_misc.txt",
				"db/re/item_package.txt",
				"db/item_findingore.txt",
			},
		},
		{
			Kind: KindLine,
			Params: Params{
				Table: "itemname", Pattern: `(.*?\()(\d+)(,.*?,')(.*?)(',.*)`, IDGroup: 2, ReplaceGroup: 4,
				Escape: true, SaveEncoding: charset.UTF8,
			},
			Globs: []string{"sql-files/**/*item_db*.sql"},
			Excludes: []string{
				"sql-files/item_db.sql",
				"sql-files/item_db_re.sql",
				"sql-files/compatibility",
				"sql-files/tools",
			},
		},
		{
			Kind: KindLine,
			Params: Params{
				Table: "mobname", Pattern: `(.*?\()(\d+)(,.*?)(,.*?,')(.*?)(',.*)`, IDGroup: 2, ReplaceGroup: 5,
				Escape: true, SaveEncoding: charset.UTF8,
			},
			Globs: []string{"sql-files/**/*mob_db*.sql"},
		},
		{
			Kind: KindLine,
			Params: Params{
				Table: "skillname", Pattern: `(//.*?|)(\d+)(.*?//)(.*)`, IDGroup: 2, ReplaceGroup: 4,
				Decorate: "CommentSpaceStandard", SaveEncoding: charset.UTF8BOM,
			},
			Files: []string{"db/re/skill_nocast_db.txt", "db/pre-re/skill_nocast_db.txt"},
		},
		{
			Kind: KindLine,
			Params: Params{
				Table: "skillname", Pattern: `(//.*?|)(\d+,)(\d+)(.*?//)(.*)`, IDGroup: 3, ReplaceGroup: 5,
				Decorate: "SkillTreeDescription", SaveEncoding: charset.UTF8BOM,
			},
			Files: []string{"db/re/skill_tree.txt", "db/pre-re/skill_tree.txt"},
		},
		{
			Kind: KindLine,
			Params: Params{
				Table: "skillname", Pattern: `(//.*?|)(.*?,)(.*?)(,.*?,)(\d+)(,.*)`, IDGroup: 5, ReplaceGroup: 3,
				Decorate: "MobSkillForSkillName", SaveEncoding: charset.UTF8BOM,
			},
			Files: []string{"db/re/mob_skill_db.txt", "db/pre-re/mob_skill_db.txt"},
		},
		{
			Kind: KindLine,
			Params: Params{
				Table: "mobname", Pattern: `(//.*?|)(.*?)(,.*?)(,.*?,)(\d+)(,.*)`, IDGroup: 2, ReplaceGroup: 3,
				Decorate: "MobSkillForMobName", SaveEncoding: charset.UTF8BOM,
			},
			Files: []string{"db/re/mob_skill_db.txt", "db/pre-re/mob_skill_db.txt"},
		},
		{
			Kind: KindLine,
			Params: Params{
				Table: "skillname", Pattern: sqlMobSkillPattern, IDGroup: 5, ReplaceGroup: 3,
				Escape: true, Decorate: "MobSkillForSkillNameSQL", SaveEncoding: charset.UTF8BOM,
			},
			Globs: []string{"sql-files/**/*mob_skill_db*.sql"},
		},
		{
			Kind: KindLine,
			Params: Params{
				Table: "mobname", Pattern: sqlMobSkillPattern, IDGroup: 2, ReplaceGroup: 3,
				Escape: true, Decorate: "MobSkillForMobNameSQL", SaveEncoding: charset.UTF8BOM,
			},
			Globs: []string{"sql-files/**/*mob_skill_db*.sql"},
		},
		{
			Kind:   KindYaml,
			Params: Params{Table: "itemname", IDField: "Id", TargetField: "Name", SaveEncoding: charset.UTF8BOM},
			Globs:  []string{"db/pre-re/item_db_*.yml", "db/re/item_db_*.yml"},
		},
		{
			Kind:   KindYaml,
			Params: Params{Table: "skillname", IDField: "Id", TargetField: "Description", SaveEncoding: charset.UTF8BOM},
			Globs:  []string{"db/pre-re/skill_db.yml", "db/re/skill_db.yml"},
		},
		{
			Kind:   KindYaml,
			Params: Params{Table: "questname", IDField: "Id", TargetField: "Title", SaveEncoding: charset.UTF8BOM},
			Globs:  []string{"db/pre-re/quest_db.yml", "db/re/quest_db.yml"},
		},
		{
			Kind: KindFulltext,
			Params: Params{
				Table: "groupname", Pattern: `("|\[)(.*?)("|\])`, Flags: "sm", IDGroup: 2,
				Template: "${1}{trans}${3}", SaveEncoding: charset.UTF8BOM,
			},
			Conf:  true,
			Files: []string{"groups.conf"},
		},
		{
			Kind: KindFulltext,
			Params: Params{
				Table: "channelname", Pattern: `(name:\s+|alias:\s+)"(.*?)"`, Flags: "sm", IDGroup: 2,
				Template: `${1}"{trans}"`, SaveEncoding: charset.UTF8BOM,
			},
			Conf:  true,
			Files: []string{"channels.conf"},
		},
		{
			Kind: KindFulltext,
			Params: Params{
				Table: "storagename", Pattern: `Name:(\s+)"(.*?)"`, Flags: "sm", IDGroup: 2,
				Template: `Name:${1}"{trans}"`, SaveEncoding: charset.UTF8BOM,
			},
			Conf:  true,
			Files: []string{"inter_server.yml"},
		},
		{
			Kind:   KindYaml,
			Params: Params{Table: "mobname", IDField: "Id", TargetField: "JapaneseName", TargetPos: 3, SaveEncoding: charset.UTF8BOM},
			Globs:  []string{"db/pre-re/mob_db.yml", "db/re/mob_db.yml"},
		},
	}
}
