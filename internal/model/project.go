package model

// Project is a build belonging to a user. The account workflow only ever
// reads projects — they are created and advanced elsewhere.
//
// Total and Current track progress toward a goal (e.g. "ship 7 milestones",
// currently on 3). No bound between them is enforced here.
type Project struct {
	ID                 string    `json:"id"`
	ProjectName        string    `json:"projectname"`
	IsDiscordConnected bool      `json:"isDiscordConnected"`
	IsTwitterShared    bool      `json:"isTwitterShared"`
	Total              int       `json:"total"`
	Current            int       `json:"current"`
	UserID             string    `json:"userId"`
	Messages           []Message `json:"messages"`
}

// Message is a note attached to a project. Target names the milestone or
// recipient the note concerns.
type Message struct {
	ID     string `json:"id"`
	Body   string `json:"message"`
	Target string `json:"target"`
}
