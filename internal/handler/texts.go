package handler

const (
	textWelcome = "👋 Hi! Send me a link to a video or a post and I'll fetch it for you.\n\n" +
		"After a quick lookup you'll get a preview with a choice of formats:\n" +
		"🎬 Video, 🎵 Audio (mp3 with cover), 🎙 Voice note or 🖼 Thumbnail.\n\n" +
		"📋 Commands:\n" +
		"/help — Show this message\n" +
		"/cancel — Drop the pending link"

	textSendLink       = "🔗 Send me a link (http or https) to get started."
	textResolving      = "🔎 Looking up the link..."
	textUnresolved     = "❌ Couldn't read this link. Check that it is public and supported, then try again."
	textPreviewFailed  = "❌ Couldn't show the preview. Please send the link again."
	textSessionMissing = "⌛ This choice has expired. Please send the link again."
	textDownloading    = "⏬ Downloading..."
	textUploading      = "📤 Uploading..."
	textTooLarge       = "⚠️ The file is %.1f MiB, over the %d MiB limit. Try another format or a shorter clip."
	textFailed         = "❌ Download failed after %d attempts. Please try again later."
	textDeliveryFailed = "❌ Couldn't send the file. Please try again later."
	textCancelled      = "🗑 Pending link dropped."
	textNothingPending = "Nothing to cancel."
	textUnknownCommand = "🤷 Unknown command. Send /help for the list."

	textStats = "📊 Stats\n\n" +
		"Sessions: %d\n" +
		"Busy keys: %d\n" +
		"Running tasks: %d\n" +
		"Downloads in flight: %d\n" +
		"Files on disk: %d (%.1f MiB)"
)
