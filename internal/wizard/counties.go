package wizard

// State is a selectable state with its display label.
type State struct {
	Code  string
	Label string
}

// States lists the states the backend can look up, in display order.
var States = []State{
	{Code: "TN", Label: "Tennessee"},
	{Code: "GA", Label: "Georgia"},
	{Code: "VA", Label: "Virginia"},
}

var counties = map[string][]string{
	"TN": {
		"Anderson County, TN",
		"Bedford County, TN",
		"Benton County, TN",
		"Bledsoe County, TN",
		"Blount County, TN",
		"Bradley County, TN",
		"Campbell County, TN",
		"Cannon County, TN",
		"Carroll County, TN",
		"Carter County, TN",
		"Cheatham County, TN",
		"Chester County, TN",
		"Claiborne County, TN",
		"Clay County, TN",
		"Cocke County, TN",
		"Coffee County, TN",
		"Crockett County, TN",
		"Cumberland County, TN",
		"Davidson County, TN",
		"Decatur County, TN",
		"Dekalb County, TN",
		"Dickson County, TN",
		"Dyer County, TN",
		"Fayette County, TN",
		"Fentress County, TN",
		"Franklin County, TN",
		"Gibson County, TN",
		"Giles County, TN",
		"Grainger County, TN",
		"Greene County, TN",
		"Grundy County, TN",
		"Hamblen County, TN",
		"Hamilton County, TN",
		"Hancock County, TN",
		"Hardeman County, TN",
		"Hardin County, TN",
		"Hawkins County, TN",
		"Haywood County, TN",
		"Henderson County, TN",
		"Henry County, TN",
		"Hickman County, TN",
		"Houston County, TN",
		"Humphreys County, TN",
		"Jackson County, TN",
		"Jefferson County, TN",
		"Johnson County, TN",
		"Knox County, TN",
		"Lake County, TN",
		"Lauderdale County, TN",
		"Lawrence County, TN",
		"Lewis County, TN",
		"Lincoln County, TN",
		"Loudon County, TN",
		"Macon County, TN",
		"Madison County, TN",
		"Marion County, TN",
		"Marshall County, TN",
		"Maury County, TN",
		"McMinn County, TN",
		"McNairy County, TN",
		"Meigs County, TN",
		"Monroe County, TN",
		"Montgomery County, TN",
		"Moore County, TN",
		"Morgan County, TN",
		"Obion County, TN",
		"Overton County, TN",
		"Perry County, TN",
		"Pickett County, TN",
		"Polk County, TN",
		"Putnam County, TN",
		"Rhea County, TN",
		"Roane County, TN",
		"Robertson County, TN",
		"Rutherford County, TN",
		"Scott County, TN",
		"Sequatchie County, TN",
		"Sevier County, TN",
		"Shelby County, TN",
		"Smith County, TN",
		"Stewart County, TN",
		"Sullivan County, TN",
		"Sumner County, TN",
		"Tipton County, TN",
		"Trousdale County, TN",
		"Unicoi County, TN",
		"Union County, TN",
		"Van Buren County, TN",
		"Warren County, TN",
		"Washington County, TN",
		"Wayne County, TN",
		"Weakley County, TN",
		"White County, TN",
		"Williamson County, TN",
		"Wilson County, TN",
	},
	"GA": {
		"Catoosa County, GA",
		"Chattooga County, GA",
		"Dade County, GA",
		"Murray County, GA",
		"Walker County, GA",
		"Whitfield County, GA",
	},
	"VA": {
		"Bristill City, VA",
		"Lee County, VA",
		"Scott County, VA",
		"Smyth County, VA",
		"Washington County, VA",
		"Wise County, VA",
	},
}

// Counties returns the county options for a state code, or nil for an
// unknown state. The returned slice is a copy.
func Counties(code string) []string {
	list, ok := counties[code]
	if !ok {
		return nil
	}
	return append([]string(nil), list...)
}

// StateLabel returns the display label for code, or code itself when unknown.
func StateLabel(code string) string {
	for _, s := range States {
		if s.Code == code {
			return s.Label
		}
	}
	return code
}

// HasCounty reports whether county is offered for the state code.
func HasCounty(code, county string) bool {
	for _, c := range counties[code] {
		if c == county {
			return true
		}
	}
	return false
}
