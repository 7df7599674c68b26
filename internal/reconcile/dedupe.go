package reconcile

import "loanlook/internal/domain"

// DedupeByCode keeps the first application seen for each code.
func DedupeByCode(apps []domain.Application) []domain.Application {
	seen := make(map[string]struct{}, len(apps))
	out := make([]domain.Application, 0, len(apps))
	for _, a := range apps {
		if _, ok := seen[a.Code]; ok {
			continue
		}
		seen[a.Code] = struct{}{}
		out = append(out, a)
	}
	return out
}
