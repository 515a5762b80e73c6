package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/naviya/naviya/internal/features"
	"github.com/naviya/naviya/internal/output"
	"github.com/naviya/naviya/internal/roadmap"
	"github.com/naviya/naviya/internal/video"
)

var roadmapWatchCmd = &cobra.Command{
	Use:   "watch <roadmap-id> <node-id>",
	Short: "Track watch progress for a node's tutorial video",
	Long: `Open the node's tutorial and track watch time while you view it in
your browser. Press Enter to toggle play/pause, q to finish. Progress
is saved every five seconds of playback.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := requireUser(a)
		if err != nil {
			return err
		}
		if err := requireFeature(cmd.Context(), a, user, features.Roadmap); err != nil {
			return err
		}

		graph, err := a.Client.LoadRoadmap(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load roadmap: %w", err)
		}

		lang, _ := cmd.Flags().GetString("language")
		vm, err := roadmap.NewViewModel(graph, args[0], lang, a.Client)
		if err != nil {
			return fmt.Errorf("roadmap %s: %w", args[0], err)
		}

		v, err := vm.Select(cmd.Context(), args[1])
		if err != nil {
			return fmt.Errorf("node %s: %w", args[1], err)
		}
		if v == nil {
			output.Info("No tutorial video found for node %s.", args[1])
			return nil
		}

		fmt.Printf("%s (%s)\nhttps://youtu.be/%s\n\n", v.Title, v.DurationFormatted, v.VideoID)

		tracker := video.NewTracker(a.Client, video.Key{
			UserID:    user.ID,
			RoadmapID: args[0],
			NodeID:    args[1],
			VideoID:   v.VideoID,
			Title:     v.Title,
		}, time.Duration(v.DurationSeconds)*time.Second, func() {
			output.Success("Video complete. Node marked done.")
			vm.MarkDone(args[1])
		})
		defer tracker.Close()

		tracker.OnPlay()
		fmt.Println("Playing. Enter pauses/resumes, q saves and quits.")

		lines := make(chan string)
		go func() {
			r := bufio.NewReader(os.Stdin)
			for {
				line, err := r.ReadString('\n')
				if err != nil {
					close(lines)
					return
				}
				lines <- strings.TrimSpace(line)
			}
		}()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		playing := true
		for {
			select {
			case <-ticker.C:
				tracker.Tick()
				if tracker.Completed() {
					return nil
				}
			case line, ok := <-lines:
				if !ok || line == "q" {
					tracker.OnPause()
					tracker.Tick()
					return nil
				}
				if playing {
					tracker.OnPause()
					fmt.Println("Paused.")
				} else {
					tracker.OnPlay()
					fmt.Println("Playing.")
				}
				playing = !playing
			case <-cmd.Context().Done():
				return nil
			}
		}
	},
}

func init() {
	roadmapCmd.AddCommand(roadmapWatchCmd)
	roadmapWatchCmd.Flags().String("language", "en", "Preferred tutorial language")
}
