package domain

import "fmt"

// MarkerText is the popup label for a point. The plural form is used only
// when more than one volunteer shares the point.
func MarkerText(p PointRecord) string {
	if p.Count > 1 {
		return fmt.Sprintf("%d volontärer i %s (%s)", p.Count, p.City, p.Zipcode)
	}
	return fmt.Sprintf("%d volontär i %s (%s)", p.Count, p.City, p.Zipcode)
}

// HeaderText is the heading above the map.
func HeaderText(total int) string {
	return fmt.Sprintf("Våra %d st volontärer finns i hela landet", total)
}
