package cli

import (
	"strconv"
	"strings"
	"time"

	"github.com/pathakanu/myCircle/internal/model"
	"github.com/spf13/pflag"
)

// profileForm holds the raw text of the profile screen fields.
type profileForm struct {
	name         string
	age          int
	phone        string
	email        string
	relationship string
	job          string
	birthday     string
	notes        string
	tags         string
	parents      string
	kids         string
	siblings     string
	likes        string
	dislikes     string
	interests    string
	social       string
}

func (f *profileForm) bind(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "full name")
	fs.IntVar(&f.age, "age", 0, "age in years")
	fs.StringVar(&f.phone, "phone", "", "phone number")
	fs.StringVar(&f.email, "email", "", "email address")
	fs.StringVar(&f.relationship, "relationship", "", "friend, family, coworker or other")
	fs.StringVar(&f.job, "job", "", "job or role")
	fs.StringVar(&f.birthday, "birthday", "", "birthday, free text")
	fs.StringVar(&f.notes, "notes", "", "free-text notes")
	fs.StringVar(&f.tags, "tags", "", "comma-separated tags, each name or name:color")
	fs.StringVar(&f.parents, "parents", "", "comma-separated parent names")
	fs.StringVar(&f.kids, "kids", "", "comma-separated kid names")
	fs.StringVar(&f.siblings, "siblings", "", "comma-separated sibling names")
	fs.StringVar(&f.likes, "likes", "", "comma-separated likes")
	fs.StringVar(&f.dislikes, "dislikes", "", "comma-separated dislikes")
	fs.StringVar(&f.interests, "interests", "", "comma-separated interests")
	fs.StringVar(&f.social, "social", "", "comma-separated platform:handle pairs")
}

// apply copies the fields whose flags were set onto p.
func (f *profileForm) apply(fs *pflag.FlagSet, p *model.Profile) error {
	set := func(name string) bool { return fs.Changed(name) }

	if set("name") {
		p.Name = strings.TrimSpace(f.name)
	}
	if set("age") {
		if f.age < 0 || f.age > 150 {
			return inputErrorf("age must be between 0 and 150")
		}
		p.Age = f.age
	}
	if set("phone") {
		p.Phone = strings.TrimSpace(f.phone)
	}
	if set("email") {
		p.Email = strings.TrimSpace(f.email)
	}
	if set("relationship") {
		r := strings.ToLower(strings.TrimSpace(f.relationship))
		if r != "" && !model.ValidRelationship(r) {
			return inputErrorf("relationship must be friend, family, coworker or other")
		}
		p.Relationship = r
	}
	if set("job") {
		p.Job = strings.TrimSpace(f.job)
	}
	if set("birthday") {
		p.Birthday = strings.TrimSpace(f.birthday)
	}
	if set("notes") {
		p.Notes = strings.TrimSpace(f.notes)
	}
	if set("tags") {
		p.Tags = parseTags(f.tags)
	}
	if set("parents") {
		p.Parents = model.SplitList(f.parents)
	}
	if set("kids") {
		p.Kids = model.SplitList(f.kids)
	}
	if set("siblings") {
		p.Siblings = model.SplitList(f.siblings)
	}
	if set("likes") {
		p.Likes = model.SplitList(f.likes)
	}
	if set("dislikes") {
		p.Dislikes = model.SplitList(f.dislikes)
	}
	if set("interests") {
		p.Interests = model.SplitList(f.interests)
	}
	if set("social") {
		p.SocialMedia = parseSocial(f.social)
	}

	if p.Name == "" {
		return inputErrorf("name is required")
	}
	return nil
}

func parseTags(raw string) model.TagList {
	tags := model.TagList{}
	for _, item := range model.SplitList(raw) {
		if t := model.ParseTag(item); t.Name != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func parseSocial(raw string) model.SocialList {
	handles := model.SocialList{}
	for _, item := range model.SplitList(raw) {
		if h := model.ParseSocialHandle(item); h.Handle != "" {
			handles = append(handles, h)
		}
	}
	return handles
}

func parseID(raw string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 32)
	if err != nil || n == 0 {
		return 0, inputErrorf("%q is not a valid id", raw)
	}
	return uint(n), nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseWhen reads an absolute time in loc. A bare "15:04" means today.
func parseWhen(raw string, loc *time.Location, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.ParseInLocation("15:04", raw, loc); err == nil {
		local := now.In(loc)
		return time.Date(local.Year(), local.Month(), local.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
	}
	return time.Time{}, inputErrorf("cannot read time %q, use YYYY-MM-DD HH:MM", raw)
}
