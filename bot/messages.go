package bot

// MoveRequest asks the bot for a move. Rack is column-major with the bottom
// row first; 0 is empty and 1 and 2 are the players' discs.
type MoveRequest struct {
	GameID     string  `json:"game_id,omitempty"`
	Rack       [][]int `json:"rack"`
	N          int     `json:"n,omitempty"`
	Player     int     `json:"player"`
	Difficulty int     `json:"difficulty"`
}

// MoveResponse carries either a column or an error message.
type MoveResponse struct {
	GameID string `json:"game_id,omitempty"`
	Column int    `json:"column"`
	Value  string `json:"value,omitempty"`
	PV     []int  `json:"pv,omitempty"`
	Error  string `json:"error,omitempty"`
}
