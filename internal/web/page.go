package web

import "html/template"

type pageData struct {
	Alerts  []string
	Confirm *confirmation
	Input   string
	List    template.HTML
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Tasks</title>
<style>
body { font-family: sans-serif; max-width: 40rem; margin: 2rem auto; }
.alert { background: #fde2e2; padding: .5rem; }
.task-item { display: flex; gap: .5rem; align-items: center; padding: .25rem 0; }
.task-item.completed .task-title { text-decoration: line-through; color: #888; }
.task-edit { flex: 1; }
.empty-message { list-style: none; color: #888; }
</style>
</head>
<body>
<h1>Tasks</h1>
{{range .Alerts}}<p class="alert" role="alert">{{.}}</p>
{{end}}{{with .Confirm}}<form class="confirm" method="post" action="{{.Action}}">
<p>{{.Message}}</p>
<input type="hidden" name="confirm" value="yes">
<button type="submit">Yes</button> <a href="/">No</a>
</form>
{{end}}<form id="add-form" method="post" action="/tasks">
<input id="todo-input" type="text" name="title" value="{{.Input}}" autocomplete="off" autofocus>
<button id="submit" type="submit">Add</button>
</form>
<ul id="task-list">
{{.List}}</ul>
<p><a href="/?reload=1">Reload</a></p>
</body>
</html>
`))
