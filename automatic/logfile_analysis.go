package automatic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/domino14/connectn/stats"
)

// AnalyzeLogFile reads a game log written by CompVsComp and summarizes it.
func AnalyzeLogFile(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return AnalyzeLog(file)
}

func AnalyzeLog(in io.Reader) (string, error) {
	r := csv.NewReader(in)
	// gameID,p1,p2,winner,length,moves
	r.FieldsPerRecord = 6

	p1score := &stats.Statistic{}
	lengths := &stats.Statistic{}
	var wins [3]int
	var p1Name, p2Name string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if record[0] == "gameID" {
			continue
		}
		p1Name, p2Name = record[1], record[2]
		winner, err := strconv.Atoi(record[3])
		if err != nil || winner < 0 || winner > 2 {
			return "", fmt.Errorf("bad winner %q in game %s", record[3], record[0])
		}
		length, err := strconv.Atoi(record[4])
		if err != nil {
			return "", err
		}
		if len(strings.Fields(record[5])) != length {
			return "", fmt.Errorf("game %s: length %d does not match its moves", record[0], length)
		}
		wins[winner]++
		lengths.Push(float64(length))
		switch winner {
		case 1:
			p1score.Push(1)
		case 2:
			p1score.Push(0)
		default:
			p1score.Push(0.5)
		}
	}

	games := p1score.Iterations()
	if games == 0 {
		return "", fmt.Errorf("no games in log")
	}
	lo, hi := p1score.Interval(95)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", games)
	fmt.Fprintf(&sb, "%v (first) wins: %d (%.3f%%)\n", p1Name, wins[1], 100.0*float64(wins[1])/float64(games))
	fmt.Fprintf(&sb, "%v (second) wins: %d (%.3f%%)\n", p2Name, wins[2], 100.0*float64(wins[2])/float64(games))
	fmt.Fprintf(&sb, "Draws: %d\n", wins[0])
	fmt.Fprintf(&sb, "%v score: %.4f  95%% CI: %.4f - %.4f\n", p1Name, p1score.Mean(), lo, hi)
	fmt.Fprintf(&sb, "Game length: mean %.3f  stdev %.3f\n", lengths.Mean(), lengths.Stdev())
	return sb.String(), nil
}
