package domain

import "slices"

func indexOf(ids []string, id string) int {
	return slices.Index(ids, id)
}

func removeAt(ids []string, i int) []string {
	return slices.Delete(slices.Clone(ids), i, i+1)
}
