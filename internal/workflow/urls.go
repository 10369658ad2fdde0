package workflow

import "fmt"

// listFields trims the list payload down to the fields the registry
// actually consumes; full execution objects are large.
const listFields = "items.metadata.name," +
	"items.metadata.uid," +
	"items.metadata.labels," +
	"items.status.phase," +
	"items.status.startedAt," +
	"items.status.finishedAt"

func listURL(base, namespace string) string {
	return fmt.Sprintf("%s/api/v1/workflows/%s?fields=%s", base, namespace, listFields)
}

func submitURL(base, namespace string) string {
	return fmt.Sprintf("%s/api/v1/workflows/%s/submit", base, namespace)
}

func deleteURL(base, namespace, name string) string {
	return fmt.Sprintf("%s/api/v1/workflows/%s/%s", base, namespace, name)
}

func deleteArchivedURL(base, uid string) string {
	return fmt.Sprintf("%s/api/v1/archived-workflows/%s", base, uid)
}

func logsURL(base, namespace, name string) string {
	return fmt.Sprintf("%s/api/v1/workflows/%s/%s/log?logOptions.container=main", base, namespace, name)
}

func logsArchivedURL(base, namespace, uid, name string) string {
	return fmt.Sprintf("%s/api/v1/archived-workflows/%s/%s/%s/log?logOptions.container=main", base, uid, namespace, name)
}
