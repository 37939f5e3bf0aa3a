// Package todoist provides a client for the Todoist REST API (v1).
//
// The client covers the endpoints the MCP tools need:
//   - Tasks: list by container, filter-query search, completed-task ranges,
//     create, update, move, close, delete
//   - Projects: list, get, create, update, delete, collaborators
//   - Sections and comments: list, get, create, update, delete
//   - The authenticated user and the activity log
//
// # Authentication
//
// Requests are authenticated with a personal API token sent as a bearer
// token through an oauth2 static token source. Every request is traced via
// otelhttp and, when a Metrics recorder is configured, recorded as a
// todoist_api_operations_total sample.
//
// # Projects
//
// The API returns two structurally different project shapes without a
// discriminator. The client decodes each payload once into either
// *PersonalProject or *WorkspaceProject; callers branch with a type switch
// and never inspect raw keys.
//
// # Pagination
//
// List methods return a single Page. An empty NextCursor marks the last
// page; see package pagination for draining every page.
//
// # Example Usage
//
//	client, err := todoist.NewClient(ctx, todoist.Config{Token: token})
//	if err != nil {
//	    return err
//	}
//
//	page, err := client.GetTasksByFilter(ctx, todoist.TaskFilterArgs{Query: "today | overdue"})
//	if err != nil {
//	    return err
//	}
//	for _, task := range page.Results {
//	    fmt.Println(task.Content)
//	}
package todoist
