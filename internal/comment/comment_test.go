package comment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetails_StripsLeadersAndLeadingBlankLines(t *testing.T) {
	raw := "\t///\n\t///   indented\n\t/// first\n\t///\n\t/// second\n"

	got := Details(raw, "Quickshell")

	assert.Equal(t, "  indented\nfirst\n\nsecond", got)
}

func TestDescriptionDetails(t *testing.T) {
	t.Run("summary marker", func(t *testing.T) {
		desc, details := DescriptionDetails("/// ! Short summary.\n/// Longer text\n/// over lines.", "Quickshell")
		require.NotNil(t, desc)
		require.NotNil(t, details)
		assert.Equal(t, "Short summary.", *desc)
		assert.Equal(t, "Longer text\nover lines.", *details)
	})

	t.Run("summary only", func(t *testing.T) {
		desc, details := DescriptionDetails("/// !Just a summary", "Quickshell")
		require.NotNil(t, desc)
		assert.Equal(t, "Just a summary", *desc)
		assert.Nil(t, details)
	})

	t.Run("no marker", func(t *testing.T) {
		desc, details := DescriptionDetails("/// Plain details.\n/// More.", "Quickshell")
		assert.Nil(t, desc)
		require.NotNil(t, details)
		assert.Equal(t, "Plain details.\nMore.", *details)
	})

	t.Run("empty", func(t *testing.T) {
		desc, details := DescriptionDetails("///\n///", "Quickshell")
		assert.Nil(t, desc)
		assert.Nil(t, details)
	})
}

func TestDetails_Callouts(t *testing.T) {
	got := Details("/// > [!INFO] Something to know.\n/// > [!WARNING]\n/// > Already split.", "Quickshell")

	assert.Equal(t, "> [!NOTE]\n> Something to know.\n> [!WARNING]\n> Already split.", got)
}

func TestParseLink(t *testing.T) {
	p := NewProcessor("Quickshell.Io")

	tests := []struct {
		name string
		ref  string
		want Link
	}{
		{
			name: "type only defaults module",
			ref:  "Process",
			want: Link{Module: "Quickshell.Io", Type: "Process", Local: true},
		},
		{
			name: "qualified property",
			ref:  "Quickshell.Io.Process.running",
			want: Link{Module: "Quickshell.Io", Type: "Process", Member: "running", Kind: MemberProperty, Local: true},
		},
		{
			name: "foreign function",
			ref:  "QtQuick.Item.forceActiveFocus()",
			want: Link{Module: "QtQuick", Type: "Item", Member: "forceActiveFocus", Kind: MemberFunction},
		},
		{
			name: "member only signal",
			ref:  "exited(s)",
			want: Link{Member: "exited", Kind: MemberSignal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.ParseLink(tt.ref))
		})
	}
}

func TestDetails_CrossReferences(t *testing.T) {
	got := Details("/// See @@Quickshell.Io.Process.running, and @@QtQuick.Item.\n/// Call @@reload()$ now.", "Quickshell")

	assert.Equal(t,
		"See TYPE99MQS_Quickshell_Io99NProcess99Vrunning99Tprop99TYPE, and TYPE99MQT_qml_QtQuick99NItem99TYPE.\n"+
			"Call TYPE99Vreload99Tfunc99TYPE now.",
		got)
}
