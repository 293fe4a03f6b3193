// Command tictactoe is an interactive terminal game against the
// unbeatable minimax opponent, or a two-player hotseat match.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/avandren/tictactoe/internal/ai"
	"github.com/avandren/tictactoe/internal/domain"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	l, err := readline.New("> ")
	if err != nil {
		log.Fatal().Err(err).Msg("readline init")
	}
	defer l.Close()

	fmt.Println("Welcome! Let's play Tic-Tac-Toe!")
	fmt.Println("Choose game mode:")
	fmt.Println("\t1. Single-player vs AI")
	fmt.Println("\t2. Two-player mode")
	mode, err := prompt(l)
	if err != nil {
		return
	}
	if mode != "1" && mode != "2" {
		fmt.Println("Invalid choice! Exiting.")
		os.Exit(1)
	}

	human := domain.X
	if mode == "1" {
		fmt.Println("Choose your side:")
		fmt.Println("\t1. Player X (goes first)")
		fmt.Println("\t2. Player O (goes second)")
		choice, err := prompt(l)
		if err != nil {
			return
		}
		switch choice {
		case "1":
			human = domain.X
		case "2":
			human = domain.O
		default:
			fmt.Println("Invalid choice! Exiting.")
			os.Exit(1)
		}
	}

	engine := domain.NewWithAI(mode == "1")
	searcher := ai.NewSearcher()

	for !engine.IsOver() {
		fmt.Println("-----------------")
		printBoard(engine.Board())
		fmt.Println("-----------------")

		if engine.AIEnabled() && engine.CurrentPlayer() != human {
			fmt.Println("AI is thinking...")
			mv, ok := searcher.BestMove(engine)
			if !ok {
				break
			}
			if err := engine.ApplyMove(mv); err != nil {
				log.Fatal().Err(err).Int("cell", mv).Msg("ai move rejected")
			}
			continue
		}
		if err := humanTurn(l, engine); err != nil {
			return
		}
	}

	fmt.Println("--- Final board ---")
	printBoard(engine.Board())
	fmt.Println("--- Game over! ---")
	switch out, winner := engine.Classify(); out {
	case domain.Won:
		fmt.Printf("Player %v wins!\n", winner)
	case domain.Draw:
		fmt.Println("It's a draw!")
	}
}

// humanTurn keeps prompting until one move is accepted. Returns an
// error only when input is closed (Ctrl-C / Ctrl-D).
func humanTurn(l *readline.Instance, engine *domain.Engine) error {
	for {
		fmt.Printf("Player %v, enter your move (0-8):\n", engine.CurrentPlayer())
		line, err := prompt(l)
		if err != nil {
			return err
		}
		index, err := strconv.Atoi(line)
		if err != nil {
			fmt.Println("Invalid input! Please enter a number from 0 to 8.")
			continue
		}
		switch err := engine.ApplyMove(index); {
		case err == nil:
			return nil
		case errors.Is(err, domain.ErrOutOfRange):
			fmt.Println("Invalid index! Must be 0-8.")
		case errors.Is(err, domain.ErrOccupied):
			fmt.Println("Cell already taken! Try another.")
		}
	}
}

func prompt(l *readline.Instance) (string, error) {
	line, err := l.Readline()
	if err != nil {
		// readline.ErrInterrupt on Ctrl-C, io.EOF on Ctrl-D
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", err
		}
		log.Fatal().Err(err).Msg("reading input")
	}
	return strings.TrimSpace(line), nil
}

func printBoard(b domain.Board) {
	for row := 0; row < 3; row++ {
		fmt.Printf(" %v | %v | %v \n", b[row*3], b[row*3+1], b[row*3+2])
		if row < 2 {
			fmt.Println("---|---|---")
		}
	}
}
