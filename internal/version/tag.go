package version

// TagPrefix is prepended to a version to form its git tag.
const TagPrefix = "v"

// Tag returns the git tag for v.
func (v *Version) Tag() string {
	return TagPrefix + v.raw
}

// ToTag returns the git tag for v.
func ToTag(v *Version) string {
	return v.Tag()
}

// FromTag parses a "v<version>" tag. Exactly one leading "v" is stripped and
// the remainder must begin with a digit; anything else fails with
// ErrNotAVersionTag.
func FromTag(tag string) (*Version, error) {
	if !IsVersionTag(tag) {
		return nil, &ParseError{Input: tag, Err: ErrNotAVersionTag}
	}
	v, err := Parse(tag[len(TagPrefix):])
	if err != nil {
		return nil, &ParseError{Input: tag, Err: ErrNotAVersionTag}
	}
	return v, nil
}

// IsVersionTag reports whether tag has the "v<digit>..." shape.
func IsVersionTag(tag string) bool {
	return len(tag) > len(TagPrefix) && tag[:len(TagPrefix)] == TagPrefix && isDigit(tag[len(TagPrefix)])
}

// Tagged pairs a parsed version with the literal tag it came from.
type Tagged struct {
	Tag     string
	Version *Version
}

// FromTags parses every candidate version tag, silently skipping the rest.
func FromTags(tags []string) []Tagged {
	out := make([]Tagged, 0, len(tags))
	for _, t := range tags {
		v, err := FromTag(t)
		if err != nil {
			continue
		}
		out = append(out, Tagged{Tag: t, Version: v})
	}
	return out
}

// StripTagPrefix removes one leading "v" when it is followed by a digit.
// Callers use it to forgive "v1.2.3" where a bare version was expected.
func StripTagPrefix(s string) string {
	if IsVersionTag(s) {
		return s[len(TagPrefix):]
	}
	return s
}
