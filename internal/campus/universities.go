// Package campus holds the Boston-area university roster used for campus
// map overlays. The roster is immutable configuration data: initialized
// once at program start and never written afterwards, so no
// synchronization is needed.
package campus

import (
	"sort"
	"strings"
)

// University is one institution in the roster.
type University struct {
	Name       string  `json:"name"`
	Enrollment int     `json:"enrollment"`
	Lat        float64 `json:"latitude"`
	Lng        float64 `json:"longitude"`
	City       string  `json:"city"`
	Founded    int     `json:"founded"`
	Type       string  `json:"type"` // "Public" or "Private"
	Website    string  `json:"website"`
}

// Stats summarizes the roster.
type Stats struct {
	Count           int     `json:"count"`
	TotalEnrollment int     `json:"total_enrollment"`
	AvgEnrollment   float64 `json:"avg_enrollment"`
	PublicCount     int     `json:"public_count"`
	PrivateCount    int     `json:"private_count"`
	OldestFounded   int     `json:"oldest_founded"`
	NewestFounded   int     `json:"newest_founded"`
}

// Universities is the greater Boston roster, ordered by enrollment.
var Universities = []University{
	{Name: "Boston University", Enrollment: 36624, Lat: 42.3505, Lng: -71.1054, City: "Boston", Founded: 1839, Type: "Private", Website: "https://www.bu.edu"},
	{Name: "Northeastern University", Enrollment: 33676, Lat: 42.3398, Lng: -71.0892, City: "Boston", Founded: 1898, Type: "Private", Website: "https://www.northeastern.edu"},
	{Name: "Harvard University", Enrollment: 31345, Lat: 42.3744, Lng: -71.1169, City: "Cambridge", Founded: 1636, Type: "Private", Website: "https://www.harvard.edu"},
	{Name: "University of Massachusetts Lowell", Enrollment: 17597, Lat: 42.6569, Lng: -71.3281, City: "Lowell", Founded: 1894, Type: "Public", Website: "https://www.uml.edu"},
	{Name: "University of Massachusetts Boston", Enrollment: 15810, Lat: 42.3133, Lng: -71.0380, City: "Boston", Founded: 1964, Type: "Public", Website: "https://www.umb.edu"},
	{Name: "Boston College", Enrollment: 15280, Lat: 42.3355, Lng: -71.1685, City: "Newton", Founded: 1863, Type: "Private", Website: "https://www.bc.edu"},
	{Name: "Tufts University", Enrollment: 13274, Lat: 42.4085, Lng: -71.1183, City: "Medford/Somerville", Founded: 1852, Type: "Private", Website: "https://www.tufts.edu"},
	{Name: "Massachusetts Institute of Technology", Enrollment: 11920, Lat: 42.3601, Lng: -71.0942, City: "Cambridge", Founded: 1861, Type: "Private", Website: "https://www.mit.edu"},
	{Name: "Bridgewater State University", Enrollment: 9942, Lat: 41.9901, Lng: -70.9742, City: "Bridgewater", Founded: 1840, Type: "Public", Website: "https://www.bridgew.edu"},
	{Name: "Bunker Hill Community College", Enrollment: 8545, Lat: 42.3780, Lng: -71.0699, City: "Boston", Founded: 1973, Type: "Public", Website: "https://www.bhcc.edu"},
	{Name: "Berklee College of Music", Enrollment: 8448, Lat: 42.3467, Lng: -71.0840, City: "Boston", Founded: 1945, Type: "Private", Website: "https://www.berklee.edu"},
	{Name: "Salem State University", Enrollment: 7131, Lat: 42.5141, Lng: -70.8967, City: "Salem", Founded: 1854, Type: "Public", Website: "https://www.salemstate.edu"},
	{Name: "Suffolk University", Enrollment: 6697, Lat: 42.3589, Lng: -71.0622, City: "Boston", Founded: 1906, Type: "Private", Website: "https://www.suffolk.edu"},
	{Name: "Massachusetts College of Pharmacy and Health Sciences", Enrollment: 6321, Lat: 42.3407, Lng: -71.0873, City: "Boston", Founded: 1823, Type: "Private", Website: "https://www.mcphs.edu"},
	{Name: "Simmons University", Enrollment: 5984, Lat: 42.3428, Lng: -71.1002, City: "Boston", Founded: 1899, Type: "Private", Website: "https://www.simmons.edu"},
	{Name: "Emerson College", Enrollment: 5670, Lat: 42.3522, Lng: -71.0679, City: "Boston", Founded: 1880, Type: "Private", Website: "https://www.emerson.edu"},
	{Name: "Merrimack College", Enrollment: 5452, Lat: 42.7684, Lng: -71.2767, City: "North Andover", Founded: 1947, Type: "Private", Website: "https://www.merrimack.edu"},
	{Name: "Brandeis University", Enrollment: 5302, Lat: 42.3664, Lng: -71.2595, City: "Waltham", Founded: 1948, Type: "Private", Website: "https://www.brandeis.edu"},
	{Name: "Bentley University", Enrollment: 5264, Lat: 42.3885, Lng: -71.2304, City: "Waltham", Founded: 1917, Type: "Private", Website: "https://www.bentley.edu"},
	{Name: "Framingham State University", Enrollment: 4495, Lat: 42.3014, Lng: -71.4370, City: "Framingham", Founded: 1839, Type: "Public", Website: "https://www.framingham.edu"},
	{Name: "Wentworth Institute of Technology", Enrollment: 4018, Lat: 42.3370, Lng: -71.0955, City: "Boston", Founded: 1904, Type: "Private", Website: "https://www.wit.edu"},
	{Name: "Endicott College", Enrollment: 3982, Lat: 42.5762, Lng: -70.8265, City: "Beverly", Founded: 1939, Type: "Private", Website: "https://www.endicott.edu"},
	{Name: "Babson College", Enrollment: 3684, Lat: 42.2963, Lng: -71.2643, City: "Wellesley", Founded: 1919, Type: "Private", Website: "https://www.babson.edu"},
	{Name: "Regis College", Enrollment: 3599, Lat: 42.2877, Lng: -71.2632, City: "Weston", Founded: 1927, Type: "Private", Website: "https://www.regiscollege.edu"},
	{Name: "Lesley University", Enrollment: 3134, Lat: 42.3875, Lng: -71.1304, City: "Cambridge", Founded: 1909, Type: "Private", Website: "https://www.lesley.edu"},
	{Name: "Quincy College", Enrollment: 2603, Lat: 42.2501, Lng: -71.0022, City: "Quincy", Founded: 1958, Type: "Public", Website: "https://www.quincycollege.edu"},
	{Name: "Stonehill College", Enrollment: 2479, Lat: 42.1067, Lng: -71.0578, City: "Easton", Founded: 1948, Type: "Private", Website: "https://www.stonehill.edu"},
	{Name: "Wellesley College", Enrollment: 2461, Lat: 42.2947, Lng: -71.3055, City: "Wellesley", Founded: 1870, Type: "Private", Website: "https://www.wellesley.edu"},
	{Name: "Cambridge College", Enrollment: 2451, Lat: 42.3731, Lng: -71.1097, City: "Cambridge", Founded: 1971, Type: "Private", Website: "https://www.cambridgecollege.edu"},
	{Name: "Curry College", Enrollment: 2242, Lat: 42.2764, Lng: -71.0631, City: "Milton", Founded: 1879, Type: "Private", Website: "https://www.curry.edu"},
}

// ByName returns the university with the given name, case-insensitive.
func ByName(name string) (University, bool) {
	for _, u := range Universities {
		if strings.EqualFold(u.Name, name) {
			return u, true
		}
	}
	return University{}, false
}

// ByCity returns all universities in the given city, case-insensitive.
func ByCity(city string) []University {
	var out []University
	for _, u := range Universities {
		if strings.EqualFold(u.City, city) {
			out = append(out, u)
		}
	}
	return out
}

// Largest returns the n universities with the highest enrollment.
func Largest(n int) []University {
	sorted := make([]University, len(Universities))
	copy(sorted, Universities)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Enrollment > sorted[j].Enrollment
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// InBounds returns the universities within a lat/lng bounding box.
func InBounds(minLat, maxLat, minLng, maxLng float64) []University {
	var out []University
	for _, u := range Universities {
		if u.Lat >= minLat && u.Lat <= maxLat && u.Lng >= minLng && u.Lng <= maxLng {
			out = append(out, u)
		}
	}
	return out
}

// TotalEnrollment sums enrollment across the roster.
func TotalEnrollment() int {
	total := 0
	for _, u := range Universities {
		total += u.Enrollment
	}
	return total
}

// Summary computes aggregate roster statistics.
func Summary() Stats {
	s := Stats{Count: len(Universities)}
	if s.Count == 0 {
		return s
	}
	s.OldestFounded = Universities[0].Founded
	s.NewestFounded = Universities[0].Founded
	for _, u := range Universities {
		s.TotalEnrollment += u.Enrollment
		if u.Type == "Public" {
			s.PublicCount++
		} else {
			s.PrivateCount++
		}
		if u.Founded < s.OldestFounded {
			s.OldestFounded = u.Founded
		}
		if u.Founded > s.NewestFounded {
			s.NewestFounded = u.Founded
		}
	}
	s.AvgEnrollment = float64(s.TotalEnrollment) / float64(s.Count)
	return s
}
