/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analysis.go
Description: Structure summary of parsed samples. Counts values per kind and records
nesting depth and the largest containers, so run reports can describe the input that
produced a set of declarations.
*/

package value

const (
	// LargeContainer is the member or item count above which a container counts as large
	LargeContainer = 1000
	complexDepth   = 10
	complexTotal   = 10000
)

// Analysis summarizes the value trees of a set of samples
type Analysis struct {
	Objects         int `json:"objects"`
	Arrays          int `json:"arrays"`
	Strings         int `json:"strings"`
	Numbers         int `json:"numbers"`
	Bools           int `json:"bools"`
	Nulls           int `json:"nulls"`
	Fields          int `json:"fields"`    // Object members across all objects
	MaxDepth        int `json:"max_depth"` // Deepest container nesting; a sample root is depth 0
	MaxArraySize    int `json:"max_array_size"`
	MaxStringLength int `json:"max_string_length"` // In runes
	LargeObjects    int `json:"large_objects"`
	LargeArrays     int `json:"large_arrays"`
}

// Analyze walks every sample
func Analyze(samples []*Value) Analysis {
	var a Analysis
	for _, v := range samples {
		a.walk(v, 0)
	}
	return a
}

func (a *Analysis) walk(v *Value, depth int) {
	if v == nil {
		return
	}
	switch v.Kind {
	case Object:
		a.Objects++
		a.Fields += len(v.Members)
		a.MaxDepth = max(a.MaxDepth, depth)
		if len(v.Members) > LargeContainer {
			a.LargeObjects++
		}
		for _, m := range v.Members {
			a.walk(m.Value, depth+1)
		}
	case Array:
		a.Arrays++
		a.MaxDepth = max(a.MaxDepth, depth)
		a.MaxArraySize = max(a.MaxArraySize, len(v.Items))
		if len(v.Items) > LargeContainer {
			a.LargeArrays++
		}
		for _, item := range v.Items {
			a.walk(item, depth+1)
		}
	case String:
		a.Strings++
		a.MaxStringLength = max(a.MaxStringLength, len([]rune(v.Str)))
	case Number:
		a.Numbers++
	case Bool:
		a.Bools++
	case Null:
		a.Nulls++
	}
}

// Total returns the number of values of every kind
func (a Analysis) Total() int {
	return a.Objects + a.Arrays + a.Strings + a.Numbers + a.Bools + a.Nulls
}

// Complex reports whether the input is deep, wide or large enough that inference and
// rendering may take noticeable time
func (a Analysis) Complex() bool {
	return a.MaxDepth > complexDepth ||
		a.LargeObjects > 0 ||
		a.LargeArrays > 0 ||
		a.Total() > complexTotal
}
