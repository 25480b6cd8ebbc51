// Package storage persists the player-earnings dataset.
//
// Two stores are available. CSVStore writes rl_player_earnings.csv with the header
// player,country,first_place,second_place,third_place,earnings,region,total_wins,earnings_per_win
// and replaces the file atomically on every save. SQLiteStore keeps the same columns in a
// single table. Both are whole-dataset stores: Save overwrites, Load reads everything back.
// The default storage location is ~/.local/share/rl-earnings/.
package storage
